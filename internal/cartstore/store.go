package cartstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-cart-view/internal/aws"
	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// Store keeps one cart's lines in a DynamoDB table keyed by (cart_id, line_id).
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	cartID    string
	nowFunc   func() time.Time
	newID     func() string
}

// NewStore creates a Store for cartID.
func NewStore(client aws.DynamoDBAPI, tableName, cartID string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		cartID:    cartID,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// List queries every line of the cart and orders them by first insertion.
func (s *Store) List(ctx context.Context) (cart.State, error) {
	input := &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("cart_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: s.cartID},
		},
		ConsistentRead: awsBool(true),
	}

	var records []LineRecord
	p := dyn.NewQueryPaginator(s.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query lines: %w", err)
		}
		var page []LineRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal lines: %w", err)
		}
		records = append(records, page...)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	lines := make(cart.State, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.LineID, namePrefix) {
			continue
		}
		lines = append(lines, r.lineItem())
	}
	return lines, nil
}

// Create increments the line named item.Name or writes a new quantity-1 line
// with a fresh uuid. The line and its name reservation are written in one
// transaction, so concurrent creates of the same name end up on a single line.
func (s *Store) Create(ctx context.Context, item cart.LineItem) (cart.State, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		err := s.insert(ctx, item)
		if err == nil {
			return s.List(ctx)
		}
		if !errors.Is(err, errNameTaken) {
			return nil, err
		}

		target, err := s.nameTarget(ctx, item.Name)
		if err != nil {
			return nil, err
		}
		if target == "" {
			// released after the insert was rejected
			continue
		}
		err = s.incrementQuantity(ctx, target)
		if err == nil {
			return s.List(ctx)
		}
		if !errors.Is(err, errLineMissing) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("create %q: %w", item.Name, ErrContention)
}

// Update deletes the line when patch.Quantity is zero, otherwise merges patch
// into it. Missing lines are ignored. The name never changes since it keys
// the line's reservation.
func (s *Store) Update(ctx context.Context, id string, patch cart.LineItem) (cart.State, error) {
	if id == "" || strings.HasPrefix(id, namePrefix) {
		return s.List(ctx)
	}
	if patch.Quantity <= 0 {
		if err := s.delete(ctx, id); err != nil {
			return nil, err
		}
		return s.List(ctx)
	}

	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return s.List(ctx)
	}

	merged := rec.lineItem().Merge(patch)
	rec.Image = merged.Image
	rec.Category = merged.Category
	rec.Price = merged.Price
	rec.Quantity = merged.Quantity
	rec.UpdatedAt = s.nowFunc()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal line: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_exists(line_id)"),
	})
	if err != nil && !isConditionFailed(err) {
		return nil, fmt.Errorf("put line: %w", err)
	}
	return s.List(ctx)
}

// ErrContention is returned when a create keeps losing races for its name.
var ErrContention = errors.New("cartstore: name reservation contended")

const (
	namePrefix        = "name#"
	maxCreateAttempts = 5
)

var (
	errLineMissing = errors.New("line missing")
	errNameTaken   = errors.New("name taken")
)

func nameKey(name string) string { return namePrefix + name }

func (s *Store) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"cart_id": &types.AttributeValueMemberS{Value: s.cartID},
		"line_id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *Store) get(ctx context.Context, id string) (*LineRecord, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(id),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get line: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec LineRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal line: %w", err)
	}
	return &rec, nil
}

func (s *Store) incrementQuantity(ctx context.Context, id string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              s.key(id),
		UpdateExpression: awsString("SET quantity = quantity + :one, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(line_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return errLineMissing
		}
		return fmt.Errorf("increment quantity: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, item cart.LineItem) error {
	now := s.nowFunc()
	rec := LineRecord{
		CartID:    s.cartID,
		LineID:    s.newID(),
		Name:      item.Name,
		Image:     item.Image,
		Category:  item.Category,
		Price:     item.Price,
		Quantity:  1,
		Seq:       now.UnixNano(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	lineMap, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}
	nameMap, err := attributevalue.MarshalMap(NameRecord{
		CartID: s.cartID,
		LineID: nameKey(item.Name),
		Target: rec.LineID,
	})
	if err != nil {
		return fmt.Errorf("marshal name: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                nameMap,
					ConditionExpression: awsString("attribute_not_exists(line_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                lineMap,
					ConditionExpression: awsString("attribute_not_exists(line_id)"),
				},
			},
		},
	})
	if err != nil {
		if nameReserved(err) {
			return errNameTaken
		}
		return fmt.Errorf("put line %s: %w", rec.LineID, err)
	}
	return nil
}

// nameTarget returns the line id reserved for name, or "" when none is.
func (s *Store) nameTarget(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(nameKey(name)),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get name: %w", err)
	}
	if len(out.Item) == 0 {
		return "", nil
	}
	var rec NameRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return "", fmt.Errorf("unmarshal name: %w", err)
	}
	return rec.Target, nil
}

// delete removes the line and releases its name in one transaction. The
// release only applies while the name still points at id.
func (s *Store) delete(ctx context.Context, id string) error {
	rec, err := s.get(ctx, id)
	if err != nil || rec == nil {
		return err
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName:           &s.tableName,
					Key:                 s.key(id),
					ConditionExpression: awsString("attribute_exists(line_id)"),
				},
			},
			{
				Delete: &types.Delete{
					TableName:           &s.tableName,
					Key:                 s.key(nameKey(rec.Name)),
					ConditionExpression: awsString(releaseCondition),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":id": &types.AttributeValueMemberS{Value: id},
					},
				},
			},
		},
	})
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return fmt.Errorf("delete line: %w", err)
	}
	// cancelled: fine if someone else already removed the line
	still, gerr := s.get(ctx, id)
	if gerr != nil {
		return gerr
	}
	if still != nil {
		return fmt.Errorf("delete line %s: %w", id, err)
	}
	return nil
}

const releaseCondition = "attribute_not_exists(line_id) OR target = :id"

// nameReserved reports whether a create transaction failed on the name put,
// which is always the first item.
func nameReserved(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || len(tce.CancellationReasons) == 0 {
		return false
	}
	code := tce.CancellationReasons[0].Code
	return code != nil && *code == "ConditionalCheckFailed"
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
