package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
)

// catalogHandler serves the filtered public catalog through API Gateway
type catalogHandler struct {
	backend storefront.Backend
	opts    []storefront.Option
}

var catalogHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Cache-Control":                "public, max-age=300, must-revalidate", // Cache for 5 minutes, revalidate after
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET",
	"Access-Control-Allow-Headers": "Content-Type",
}

func (h *catalogHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Received request: %v", request.Path)

	filter, err := parseFilter(request.QueryStringParameters)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	ctrl := storefront.New(h.backend, storage.NewMemoryScopes(), h.opts...)
	if err := ctrl.RefreshCatalog(ctx); err != nil {
		if len(ctrl.Products()) == 0 {
			log.Printf("Error fetching catalog: %v", err)
			return errorResponse(http.StatusBadGateway, "Failed to retrieve products"), nil
		}
		log.Printf("Catalog fetch failed (%v), serving cached products.", err)
	}

	products := ctrl.FilterProducts(filter)

	responseBody, err := json.Marshal(products)
	if err != nil {
		log.Printf("Error marshaling products to JSON: %v", err)
		return errorResponse(http.StatusInternalServerError, "Failed to format response"), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    catalogHeaders,
		Body:       string(responseBody),
	}, nil
}

func parseFilter(params map[string]string) (storefront.Filter, error) {
	filter := storefront.Filter{
		Category: params["category"],
		Size:     params["size"],
		Search:   params["q"],
	}

	var err error
	if v := params["maxPrice"]; v != "" {
		if filter.MaxPrice, err = strconv.ParseFloat(v, 64); err != nil {
			return filter, err
		}
	}
	if v := params["featured"]; v != "" {
		if filter.Featured, err = strconv.ParseBool(v); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"message": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
