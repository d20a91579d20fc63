package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gitlab.connectwisedev.com/storefront-client/models"
)

// Column order: name,description,price,category,brand,color,size,stock,image_url[,featured]
const minColumns = 9

// parseProducts reads the CSV, skipping the header and every invalid row.
// It returns the valid rows and how many were skipped.
func parseProducts(content []byte) ([]models.ProductCSV, int, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // featured is optional
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, 0, fmt.Errorf("CSV is empty or has only headers")
	}

	var products []models.ProductCSV
	skipped := 0
	for i, row := range records[1:] {
		line := i + 2
		product, err := parseRow(row)
		if err != nil {
			log.Printf("Skipping row %d: %v", line, err)
			skipped++
			continue
		}
		products = append(products, product)
	}
	return products, skipped, nil
}

func parseRow(row []string) (models.ProductCSV, error) {
	if len(row) < minColumns {
		return models.ProductCSV{}, fmt.Errorf("insufficient columns: %v", row)
	}

	p := models.ProductCSV{
		Name:        strings.TrimSpace(row[0]),
		Description: row[1],
		Category:    strings.TrimSpace(row[3]),
		Brand:       row[4],
		Color:       row[5],
		Size:        row[6],
		ImageURL:    strings.TrimSpace(row[8]),
	}
	if p.Name == "" {
		return p, fmt.Errorf("missing name")
	}

	var err error
	if p.Price, err = strconv.ParseFloat(strings.TrimSpace(row[2]), 64); err != nil || p.Price < 0 {
		return p, fmt.Errorf("invalid price '%s'", row[2])
	}
	if p.Stock, err = strconv.Atoi(strings.TrimSpace(row[7])); err != nil || p.Stock < 0 {
		return p, fmt.Errorf("invalid stock '%s'", row[7])
	}
	if len(row) > minColumns && strings.TrimSpace(row[9]) != "" {
		if p.Featured, err = strconv.ParseBool(strings.TrimSpace(row[9])); err != nil {
			return p, fmt.Errorf("invalid featured flag '%s'", row[9])
		}
	}
	return p, nil
}
