package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/go-cart-view/internal/events"
)

// MetricsRecorder turns cart events into CloudWatch datapoints.
type MetricsRecorder struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

func NewMetricsRecorder(cw CloudWatchAPI, namespace string) *MetricsRecorder {
	if namespace == "" {
		namespace = "CartView"
	}
	return &MetricsRecorder{CloudWatch: cw, Namespace: namespace}
}

// RecordCartUpdated puts CartSubtotal, CartLines and CartUnits for evt,
// dimensioned by cart id.
func (m *MetricsRecorder) RecordCartUpdated(ctx context.Context, evt events.CartUpdated) error {
	dims := []cwtypes.Dimension{{Name: awsString("CartId"), Value: awsString(evt.CartID)}}
	ts := evt.PublishedAt

	datum := func(name string, v float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: awsString(name),
			Dimensions: dims,
			Timestamp:  &ts,
			Value:      &v,
			Unit:       unit,
		}
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			datum("CartSubtotal", evt.Subtotal, cwtypes.StandardUnitNone),
			datum("CartLines", float64(evt.Lines), cwtypes.StandardUnitCount),
			datum("CartUnits", float64(evt.Units), cwtypes.StandardUnitCount),
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
