package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/api"
)

// S3EventWrapper is a custom struct to handle either S3 events or direct CSV payload
type S3EventWrapper struct {
	Records []events.S3EventRecord `json:"Records,omitempty"`
	CSVData string                 `json:"csv_data,omitempty"` // For local testing
}

// ImportSummary is returned to the invoker once every row has been tried
type ImportSummary struct {
	BatchID string `json:"batchId"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

type productCreator interface {
	CreateProduct(ctx context.Context, product models.ProductInput) (api.Result, error)
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// productImporter creates catalog products from CSV files through the commerce API
type productImporter struct {
	api     productCreator
	objects objectGetter
}

func (p *productImporter) Handle(ctx context.Context, event S3EventWrapper) (ImportSummary, error) {
	summary := ImportSummary{BatchID: uuid.New().String()}

	var csvContent []byte
	var err error
	switch {
	case len(event.Records) > 0:
		s3Record := event.Records[0].S3
		log.Printf("[%s] Processing S3 event for bucket: %s, key: %s", summary.BatchID, s3Record.Bucket.Name, s3Record.Object.Key)
		csvContent, err = p.download(ctx, s3Record.Bucket.Name, s3Record.Object.Key)
	case event.CSVData != "":
		// This path is for direct invocation with CSV data (for local testing via Postman/CLI)
		log.Printf("[%s] Processing direct CSV data payload.", summary.BatchID)
		csvContent = []byte(event.CSVData)
	default:
		return summary, fmt.Errorf("no S3 event record or direct CSV data found in the payload")
	}
	if err != nil {
		return summary, err
	}

	rows, skipped, err := parseProducts(csvContent)
	if err != nil {
		return summary, err
	}
	summary.Skipped = skipped

	for _, row := range rows {
		if _, err := p.api.CreateProduct(ctx, row.Input()); err != nil {
			log.Printf("[%s] Error creating product %s: %v", summary.BatchID, row.Name, err)
			summary.Failed++
			continue // Continue processing other rows even if one fails
		}
		summary.Created++
	}

	log.Printf("[%s] Import finished: %d created, %d skipped, %d failed.", summary.BatchID, summary.Created, summary.Skipped, summary.Failed)
	if summary.Created == 0 && summary.Failed > 0 {
		return summary, fmt.Errorf("all %d products were rejected by the API", summary.Failed)
	}
	return summary, nil
}

func (p *productImporter) download(ctx context.Context, bucket, key string) ([]byte, error) {
	// Object keys arrive URL-encoded in S3 notifications.
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return nil, fmt.Errorf("invalid object key %q: %w", key, err)
	}

	result, err := p.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(decoded),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	content, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return content, nil
}
