package connection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Interfaces abstracting the AWS SDK (allows mocking).
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// FetchParameter is the public wrapper that initializes the real SSM client.
func FetchParameter(ctx context.Context, settings Settings, path string, decrypt bool) (any, error) {
	cfg, err := LoadAWSConfig(ctx, settings)
	if err != nil {
		return nil, err
	}
	return fetchParameterInternal(ctx, ssm.NewFromConfig(cfg), path, decrypt)
}

// fetchParameterInternal is the pure logic, testable via mock.
func fetchParameterInternal(ctx context.Context, client SSMClient, path string, decrypt bool) (any, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return nil, fmt.Errorf("ssm GetParameter failed: %w", err)
	}
	return *out.Parameter.Value, nil
}

// FetchSecret is the public wrapper that initializes the real Secrets Manager
// client.
func FetchSecret(ctx context.Context, settings Settings, secretID string) (any, error) {
	cfg, err := LoadAWSConfig(ctx, settings)
	if err != nil {
		return nil, err
	}
	return fetchSecretInternal(ctx, secretsmanager.NewFromConfig(cfg), secretID)
}

// fetchSecretInternal is the pure logic, testable via mock. JSON secrets
// decode into a map; anything else comes back as the raw string.
func fetchSecretInternal(ctx context.Context, client SecretsClient, secretID string) (any, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return nil, fmt.Errorf("secretsmanager GetSecretValue failed: %w", err)
	}

	val := *out.SecretString

	var data map[string]any
	if err := json.Unmarshal([]byte(val), &data); err == nil {
		return data, nil
	}
	return val, nil
}
