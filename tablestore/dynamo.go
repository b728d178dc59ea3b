// tablestore/dynamo.go
package tablestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/raywall/tablestore-toolkit/envloader"
)

// defaultTTL is applied when a write carries the configured TTL column with
// a nil value, asking the store to pick an expiration.
const defaultTTL = 24 * time.Hour

// DynamoTable is the production Table backed by a DynamoDB table. Row
// identity maps onto the partition and sort attributes named in the config;
// the concurrency stamp lives in a regular attribute and is enforced through
// conditional writes.
type DynamoTable struct {
	client DynamoDBClient
	cfg    TableConfig
}

// NewDynamoTable wires a Table to an existing DynamoDB client. When
// cfg.TableName is empty the config is loaded from the environment; the
// attribute names fall back to pk, rk and stamp.
func NewDynamoTable(client DynamoDBClient, cfg TableConfig) (*DynamoTable, error) {
	if err := requireNonNil(client, "client"); err != nil {
		return nil, err
	}
	if cfg.TableName == "" {
		_ = envloader.Load(&cfg)
	}
	if err := requireNonEmpty(cfg.TableName, "cfg.TableName"); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &DynamoTable{client: client, cfg: cfg}, nil
}

// FetchSegment runs one bounded Scan. The store applies limit before
// filtering, so a segment can legally come back empty while the token still
// says more data remains; callers must keep fetching until the token does.
func (t *DynamoTable) FetchSegment(ctx context.Context, q Query, token ContinuationToken, limit int32) (Segment, error) {
	startKey, err := decodeToken(token)
	if err != nil {
		return Segment{}, err
	}

	input := &dynamodb.ScanInput{
		TableName:         aws.String(t.cfg.TableName),
		ExclusiveStartKey: startKey,
	}
	if q.Filter != "" {
		input.FilterExpression = aws.String(q.Filter)
	}
	if q.Projection != "" {
		input.ProjectionExpression = aws.String(q.Projection)
	}
	if len(q.Names) > 0 {
		input.ExpressionAttributeNames = q.Names
	}
	if len(q.Values) > 0 {
		input.ExpressionAttributeValues = q.Values
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	if q.ConsistentRead {
		input.ConsistentRead = aws.Bool(true)
	}

	out, err := t.client.Scan(ctx, input)
	if err != nil {
		return Segment{}, storeUnavailable("scan", err)
	}

	rows := make([]Row, 0, len(out.Items))
	for _, item := range out.Items {
		rows = append(rows, t.rowFromItem(item))
	}
	next, err := encodeToken(out.LastEvaluatedKey)
	if err != nil {
		return Segment{}, storeUnavailable("scan", err)
	}
	return Segment{Rows: rows, NextToken: next}, nil
}

// GetByKey retrieves one row with a strongly consistent read, or ErrNotFound.
func (t *DynamoTable) GetByKey(ctx context.Context, partitionKey, rowKey string) (Row, error) {
	if err := requireNonEmpty(partitionKey, "partitionKey"); err != nil {
		return Row{}, err
	}
	if err := requireNonEmpty(rowKey, "rowKey"); err != nil {
		return Row{}, err
	}

	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.cfg.TableName),
		Key:            t.keyOf(partitionKey, rowKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Row{}, storeUnavailable("get", err)
	}
	if out.Item == nil {
		return Row{}, ErrNotFound
	}
	return t.rowFromItem(out.Item), nil
}

// PutRow writes row under mode and assigns it a fresh stamp. A violated
// precondition is reported through the outcome's status code, not as an
// error: StatusConflict when an insert finds the identity taken,
// StatusPreconditionFailed when a stamped mode misses.
func (t *DynamoTable) PutRow(ctx context.Context, row Row, mode WriteMode) (Outcome, error) {
	if err := requireNonEmpty(row.PartitionKey, "row.PartitionKey"); err != nil {
		return Outcome{}, err
	}
	if err := requireNonEmpty(row.RowKey, "row.RowKey"); err != nil {
		return Outcome{}, err
	}
	if !mode.valid() {
		return Outcome{}, &InvalidArgumentError{Label: "mode", Reason: fmt.Sprintf("unknown write mode %q", mode)}
	}
	if (mode == ModeMerge || mode == ModeReplace) && row.Stamp == "" {
		return Outcome{}, &InvalidArgumentError{Label: "row.Stamp", Reason: "must not be empty for stamped writes"}
	}

	stamp := uuid.NewString()
	switch mode {
	case ModeMerge:
		return t.update(ctx, row, stamp, true)
	case ModeInsertOrMerge:
		return t.update(ctx, row, stamp, false)
	default:
		return t.put(ctx, row, stamp, mode)
	}
}

// DeleteRow removes a row. The stamp must match the stored one unless it is
// UnconditionalStamp, which deletes regardless and succeeds even when the
// row is already gone.
func (t *DynamoTable) DeleteRow(ctx context.Context, partitionKey, rowKey, stamp string) (Outcome, error) {
	if err := requireNonEmpty(partitionKey, "partitionKey"); err != nil {
		return Outcome{}, err
	}
	if err := requireNonEmpty(rowKey, "rowKey"); err != nil {
		return Outcome{}, err
	}
	if err := requireNonEmpty(stamp, "stamp"); err != nil {
		return Outcome{}, err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(t.cfg.TableName),
		Key:       t.keyOf(partitionKey, rowKey),
	}
	if stamp != UnconditionalStamp {
		input.ConditionExpression = aws.String("attribute_exists(#pk) AND #s = :s")
		input.ExpressionAttributeNames = map[string]string{
			"#pk": t.cfg.PartitionAttribute,
			"#s":  t.cfg.StampAttribute,
		}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: stamp},
		}
	}

	if _, err := t.client.DeleteItem(ctx, input); err != nil {
		if isConditionalFailure(err) {
			return Outcome{StatusCode: StatusPreconditionFailed}, nil
		}
		return Outcome{StatusCode: StatusUnavailable}, storeUnavailable("delete", err)
	}
	return Outcome{StatusCode: StatusNoContent}, nil
}

func (t *DynamoTable) put(ctx context.Context, row Row, stamp string, mode WriteMode) (Outcome, error) {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(t.cfg.TableName),
		Item:      t.itemFromRow(row, stamp),
	}

	success := StatusNoContent
	conflict := StatusPreconditionFailed
	switch mode {
	case ModeInsert:
		success = StatusCreated
		conflict = StatusConflict
		input.ConditionExpression = aws.String("attribute_not_exists(#pk)")
		input.ExpressionAttributeNames = map[string]string{"#pk": t.cfg.PartitionAttribute}
	case ModeReplace:
		if row.Stamp == UnconditionalStamp {
			input.ConditionExpression = aws.String("attribute_exists(#pk)")
			input.ExpressionAttributeNames = map[string]string{"#pk": t.cfg.PartitionAttribute}
		} else {
			input.ConditionExpression = aws.String("attribute_exists(#pk) AND #s = :old")
			input.ExpressionAttributeNames = map[string]string{
				"#pk": t.cfg.PartitionAttribute,
				"#s":  t.cfg.StampAttribute,
			}
			input.ExpressionAttributeValues = map[string]types.AttributeValue{
				":old": &types.AttributeValueMemberS{Value: row.Stamp},
			}
		}
	}

	if _, err := t.client.PutItem(ctx, input); err != nil {
		if isConditionalFailure(err) {
			return Outcome{StatusCode: conflict}, nil
		}
		return Outcome{StatusCode: StatusUnavailable}, storeUnavailable("put", err)
	}
	return Outcome{StatusCode: success, Stamp: stamp}, nil
}

func (t *DynamoTable) update(ctx context.Context, row Row, stamp string, requireExisting bool) (Outcome, error) {
	fields := t.normalizeFields(row.Fields)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	exprNames := map[string]string{"#s": t.cfg.StampAttribute}
	exprValues := map[string]types.AttributeValue{
		":s": &types.AttributeValueMemberS{Value: stamp},
	}
	sets := []string{"#s = :s"}
	for i, name := range names {
		nk := fmt.Sprintf("#f%d", i)
		vk := fmt.Sprintf(":f%d", i)
		exprNames[nk] = name
		exprValues[vk] = fields[name]
		sets = append(sets, nk+" = "+vk)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.cfg.TableName),
		Key:                       t.keyOf(row.PartitionKey, row.RowKey),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	}
	if requireExisting {
		exprNames["#pk"] = t.cfg.PartitionAttribute
		if row.Stamp == UnconditionalStamp {
			input.ConditionExpression = aws.String("attribute_exists(#pk)")
		} else {
			input.ConditionExpression = aws.String("attribute_exists(#pk) AND #s = :old")
			exprValues[":old"] = &types.AttributeValueMemberS{Value: row.Stamp}
		}
	}

	if _, err := t.client.UpdateItem(ctx, input); err != nil {
		if isConditionalFailure(err) {
			return Outcome{StatusCode: StatusPreconditionFailed}, nil
		}
		return Outcome{StatusCode: StatusUnavailable}, storeUnavailable("update", err)
	}
	return Outcome{StatusCode: StatusNoContent, Stamp: stamp}, nil
}

func (t *DynamoTable) keyOf(partitionKey, rowKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		t.cfg.PartitionAttribute: &types.AttributeValueMemberS{Value: partitionKey},
		t.cfg.RowAttribute:       &types.AttributeValueMemberS{Value: rowKey},
	}
}

// rowFromItem splits a raw item into identity, stamp and property bag.
func (t *DynamoTable) rowFromItem(item map[string]types.AttributeValue) Row {
	row := Row{Fields: make(map[string]types.AttributeValue, len(item))}
	for name, av := range item {
		switch name {
		case t.cfg.PartitionAttribute:
			row.PartitionKey = avString(av)
		case t.cfg.RowAttribute:
			row.RowKey = avString(av)
		case t.cfg.StampAttribute:
			row.Stamp = avString(av)
		default:
			row.Fields[name] = av
		}
	}
	return row
}

func (t *DynamoTable) itemFromRow(row Row, stamp string) map[string]types.AttributeValue {
	fields := t.normalizeFields(row.Fields)
	item := make(map[string]types.AttributeValue, len(fields)+3)
	for name, av := range fields {
		item[name] = av
	}
	item[t.cfg.PartitionAttribute] = &types.AttributeValueMemberS{Value: row.PartitionKey}
	item[t.cfg.RowAttribute] = &types.AttributeValueMemberS{Value: row.RowKey}
	item[t.cfg.StampAttribute] = &types.AttributeValueMemberS{Value: stamp}
	return item
}

// normalizeFields drops nil values, which the store rejects, except for a
// nil under the configured TTL column, which asks for a default expiration.
func (t *DynamoTable) normalizeFields(fields map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(fields))
	for name, av := range fields {
		if av == nil {
			if t.cfg.TTLAttribute != "" && name == t.cfg.TTLAttribute {
				out[name] = &types.AttributeValueMemberN{
					Value: strconv.FormatInt(time.Now().Add(defaultTTL).Unix(), 10),
				}
			}
			continue
		}
		out[name] = av
	}
	return out
}

func avString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return ""
	}
}

func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
