package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/raywall/tablestore-toolkit/pkg/config/injector"
)

// Load reads, injects and validates the toolkit configuration from source.
// It abstracts the creation of the UniversalLoader; loading usually happens
// at startup or inside a refresh goroutine, so a background context is used.
func Load(source string) (*ToolkitConfig, error) {
	loader := NewUniversalLoader()
	return loader.Load(context.Background(), source)
}

// --- Interfaces for mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// UniversalLoader supports multiple configuration sources (local file, S3,
// DynamoDB).
type UniversalLoader struct {
	validator *ConfigValidator
}

// NewUniversalLoader creates a new instance.
func NewUniversalLoader() *UniversalLoader {
	return &UniversalLoader{
		validator: NewValidator(),
	}
}

// Load detects the source scheme and loads the configuration.
func (ul *UniversalLoader) Load(ctx context.Context, source string) (*ToolkitConfig, error) {
	var rawData []byte
	var err error

	if strings.HasPrefix(source, "s3://") {
		cfg, _ := awsconfig.LoadDefaultConfig(ctx)
		client := s3.NewFromConfig(cfg)
		rawData, err = ul.loadFromS3Internal(ctx, client, source)

	} else if strings.HasPrefix(source, "dynamodb://") {
		cfg, _ := awsconfig.LoadDefaultConfig(ctx)
		client := dynamodb.NewFromConfig(cfg)
		rawData, err = ul.loadFromDynamoDBInternal(ctx, client, source)

	} else {
		// Default: local file
		rawData, err = ul.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("reading config (%s) failed: %w", source, err)
	}

	return ul.parseAndValidate(ctx, rawData)
}

// --- Loading strategies (testable internals) ---

func (ul *UniversalLoader) loadFromFile(path string) ([]byte, error) {
	// Supports both "file://config.yaml" and a bare "config.yaml"
	cleanPath := strings.TrimPrefix(path, "file://")
	return os.ReadFile(cleanPath)
}

func (ul *UniversalLoader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 URL: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (ul *UniversalLoader) loadFromDynamoDBInternal(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid DynamoDB URL: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	// Optional query params: dynamodb://table/key?col=data&pk=ConfigId
	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config" // default column holding the YAML
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id" // default partition key name
	}

	keyMap := map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, fmt.Errorf("config item not found in DynamoDB")
	}

	var itemMap map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("column '%s' missing or not a string in DynamoDB item", colName)
	}

	return []byte(content), nil
}

// parseAndValidate unmarshals, resolves placeholders and validates.
func (ul *UniversalLoader) parseAndValidate(ctx context.Context, data []byte) (*ToolkitConfig, error) {
	var cfg ToolkitConfig

	// 1. Unmarshal (YAML -> struct)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed YAML: %w", err)
	}

	// 2. Injection (env / secrets / ssm placeholders)
	inj := injector.New()
	if err := inj.Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("variable injection failed: %w", err)
	}

	// 3. Validation
	if ul.validator != nil {
		if err := ul.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &cfg, nil
}
