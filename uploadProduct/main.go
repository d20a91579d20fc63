package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/config"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

var (
	ctx      = context.Background()
	importer *productImporter
)

func init() {
	config.LoadEnv() // Load environment variables first

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, storage.NewMemoryScope(), api.WithTimeout(cfg.HTTPTimeout))
	if cfg.AdminToken == "" {
		log.Println("Warning: ADMIN_TOKEN not set, product creation will be rejected by the API.")
	} else if err := client.SetToken(ctx, cfg.AdminToken); err != nil {
		log.Fatalf("Failed to set admin token: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	importer = &productImporter{api: client, objects: s3.NewFromConfig(awsCfg)}
}

func main() {
	lambda.Start(importer.Handle)
}
