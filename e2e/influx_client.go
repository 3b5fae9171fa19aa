package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back the points written by the dispatch sinks.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{org: org, bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// EnsureBucket creates the organisation and bucket when they do not exist.
func (c *InfluxClient) EnsureBucket(ctx context.Context) error {
	orgAPI := c.client.OrganizationsAPI()
	org, err := orgAPI.FindOrganizationByName(ctx, c.org)
	if err != nil || org == nil {
		if org, err = orgAPI.CreateOrganizationWithName(ctx, c.org); err != nil {
			return fmt.Errorf("create org: %w", err)
		}
	}
	bucketAPI := c.client.BucketsAPI()
	if b, err := bucketAPI.FindBucketByName(ctx, c.bucket); err == nil && b != nil {
		return nil
	}
	if _, err := bucketAPI.CreateBucketWithName(ctx, org, c.bucket); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// FieldValues returns every value of field for measurement and run, in time order.
func (c *InfluxClient) FieldValues(ctx context.Context, measurement, field, runID string) ([]float64, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: -30d)
  |> filter(fn: (r) => r._measurement == %q and r._field == %q and r.run_id == %q)
  |> sort(columns: ["_time"])`, c.bucket, measurement, field, runID)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	var out []float64
	for res.Next() {
		switch v := res.Record().Value().(type) {
		case float64:
			out = append(out, v)
		case int64:
			out = append(out, float64(v))
		}
	}
	return out, res.Err()
}

func (c *InfluxClient) Close() { c.client.Close() }
