// internal/dispatchlog/elasticsearch.go
package dispatchlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/sms"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "sms-dispatch-log"

// ElasticsearchRecorder indexes one document per result with the bulk API.
// Documents are keyed by result id so a retried batch does not duplicate.
type ElasticsearchRecorder struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchRecorder indexes results into index.
func NewElasticsearchRecorder(client *elasticsearch.Client, index string) *ElasticsearchRecorder {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchRecorder{client: client, index: index}
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Record bulk-indexes one document per result, keyed by the result ID.
func (r *ElasticsearchRecorder) Record(ctx context.Context, batch *sms.BatchResult) error {
	entries := Entries(batch)
	if len(entries) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, e := range entries {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": r.index, "_id": e.ResultID},
		}
		if err := enc.Encode(meta); err != nil {
			return errors.NewIndexingFailedError(r.index, err)
		}
		if err := enc.Encode(e); err != nil {
			return errors.NewIndexingFailedError(r.index, err)
		}
	}

	req := esapi.BulkRequest{
		Index: r.index,
		Body:  &body,
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return errors.NewIndexingFailedError(r.index, fmt.Errorf("%s: %s", res.Status(), msg))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return errors.NewIndexingFailedError(r.index, err)
	}
	if parsed.Errors {
		for _, item := range parsed.Items {
			for _, op := range item {
				if op.Status >= 300 {
					return errors.NewIndexingFailedError(r.index,
						fmt.Errorf("%s: %s", op.Error.Type, op.Error.Reason))
				}
			}
		}
	}
	return nil
}
