package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// AzurePartition is the partition key every board entity is written under.
const AzurePartition = "board"

// entityClient is the subset of *aztables.Client the store needs.
type entityClient interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	UpsertEntity(ctx context.Context, entity []byte, options *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error)
}

// AzureTable stores each blob as one entity with PartitionKey "board",
// RowKey set to the blob key and the payload in a Data string property.
type AzureTable struct {
	client entityClient
}

// OpenAzureTable connects with a storage connection string and creates the
// table if it does not already exist.
func OpenAzureTable(ctx context.Context, connStr, table string) (*AzureTable, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 15 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, fmt.Errorf("creating table service client: %w", err)
	}
	client := svc.NewClient(table)
	if _, err := client.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
			return nil, fmt.Errorf("creating table %s: %w", table, err)
		}
	}
	return &AzureTable{client: client}, nil
}

type blobEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Data         string `json:"Data"`
}

func encodeEntity(key string, data []byte) ([]byte, error) {
	return json.Marshal(blobEntity{PartitionKey: AzurePartition, RowKey: key, Data: string(data)})
}

func decodeEntity(raw []byte) ([]byte, error) {
	var ent blobEntity
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, err
	}
	return []byte(ent.Data), nil
}

func (a *AzureTable) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	resp, err := a.client.GetEntity(ctx, AzurePartition, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, types.ErrBlobNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	data, err := decodeEntity(resp.Value)
	if err != nil {
		return nil, fmt.Errorf("decoding entity %s: %w", key, err)
	}
	return data, nil
}

func (a *AzureTable) Put(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	payload, err := encodeEntity(key, data)
	if err != nil {
		return err
	}
	if _, err := a.client.UpsertEntity(ctx, payload, nil); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (a *AzureTable) Close() error { return nil }
