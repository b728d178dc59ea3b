package connection

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// --- Mocks ---

type MockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type MockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

// --- Tests ---

func TestFetchParameterInternal(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockVal := "my-config-value"
		mockClient := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				if *params.Name != "/app/config" {
					t.Errorf("expected path /app/config, got %s", *params.Name)
				}
				if !*params.WithDecryption {
					t.Error("expected WithDecryption true")
				}
				return &ssm.GetParameterOutput{
					Parameter: &types.Parameter{Value: &mockVal},
				}, nil
			},
		}

		res, err := fetchParameterInternal(context.Background(), mockClient, "/app/config", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.(string) != mockVal {
			t.Errorf("wrong value: %v", res)
		}
	})

	t.Run("AWS failure", func(t *testing.T) {
		mockClient := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("access denied")
			},
		}

		_, err := fetchParameterInternal(context.Background(), mockClient, "/app/config", false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestFetchSecretInternal(t *testing.T) {
	t.Run("JSON secret decodes into a map", func(t *testing.T) {
		raw := `{"username":"svc","password":"hunter2"}`
		mockClient := &MockSecrets{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				if *params.SecretId != "db-credentials" {
					t.Errorf("expected secret id db-credentials, got %s", *params.SecretId)
				}
				return &secretsmanager.GetSecretValueOutput{SecretString: &raw}, nil
			},
		}

		res, err := fetchSecretInternal(context.Background(), mockClient, "db-credentials")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, ok := res.(map[string]any)
		if !ok {
			t.Fatalf("expected map result, got %T", res)
		}
		if data["username"] != "svc" {
			t.Errorf("wrong username: %v", data["username"])
		}
	})

	t.Run("Plain secret comes back as string", func(t *testing.T) {
		raw := "plain-token"
		mockClient := &MockSecrets{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretString: &raw}, nil
			},
		}

		res, err := fetchSecretInternal(context.Background(), mockClient, "api-token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.(string) != raw {
			t.Errorf("wrong value: %v", res)
		}
	})

	t.Run("AWS failure", func(t *testing.T) {
		mockClient := &MockSecrets{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, errors.New("secret not found")
			},
		}

		_, err := fetchSecretInternal(context.Background(), mockClient, "missing")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestTransportSettings_Defaults(t *testing.T) {
	got := TransportSettings{}.withDefaults()

	if got.MaxConns != 100 {
		t.Errorf("expected MaxConns 100, got %d", got.MaxConns)
	}
	if got.MaxIdleConns != 32 {
		t.Errorf("expected MaxIdleConns 32, got %d", got.MaxIdleConns)
	}
	if got.IdleConnTimeout.Seconds() != 90 {
		t.Errorf("expected 90s idle timeout, got %v", got.IdleConnTimeout)
	}

	tuned := TransportSettings{MaxConns: 7}.withDefaults()
	if tuned.MaxConns != 7 {
		t.Errorf("explicit MaxConns must be kept, got %d", tuned.MaxConns)
	}
}

func TestNewHTTPClient_AppliesKnobs(t *testing.T) {
	client := newHTTPClient(TransportSettings{MaxConns: 3, MaxIdleConns: 2})

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.MaxConnsPerHost != 3 {
		t.Errorf("expected MaxConnsPerHost 3, got %d", transport.MaxConnsPerHost)
	}
	if transport.MaxIdleConnsPerHost != 2 {
		t.Errorf("expected MaxIdleConnsPerHost 2, got %d", transport.MaxIdleConnsPerHost)
	}
	if transport.IdleConnTimeout.Seconds() != 90 {
		t.Errorf("expected default idle timeout, got %v", transport.IdleConnTimeout)
	}
}
