// Package importer turns admin CSV uploads into catalog and return records
// and renders the order export.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sales-flow/internal/models"
)

// Result reports how many rows were accepted and skipped
type Result struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// ParseCatalog reads "SKU_ID, SKU_Name, Quantity" rows. Malformed rows are
// skipped; if nothing valid remains ErrNoValidRows is returned.
func ParseCatalog(r io.Reader) ([]models.SKU, Result, error) {
	var skus []models.SKU
	res, err := eachRow(r, 3, func(fields []string) bool {
		id, name := strings.ToUpper(fields[0]), fields[1]
		qty, err := strconv.Atoi(fields[2])
		if id == "" || name == "" || err != nil {
			return false
		}
		skus = append(skus, models.SKU{ID: id, Name: name, WarehouseStock: qty})
		return true
	})
	if err != nil {
		return nil, res, err
	}
	if len(skus) == 0 {
		return nil, res, fmt.Errorf("%w: expected SKU_ID, SKU_Name, Quantity", models.ErrNoValidRows)
	}
	return skus, res, nil
}

// ParseReturns reads "SalesUsername, SalesName, SKU_ID, SKU_Name, Quantity" rows
func ParseReturns(r io.Reader, now time.Time, newID func(prefix string) string) ([]models.ReturnRecord, Result, error) {
	var records []models.ReturnRecord
	res, err := eachRow(r, 5, func(fields []string) bool {
		record, ok := BuildReturn(fields[0], fields[1], fields[2], fields[3], fields[4])
		if !ok {
			return false
		}
		record.ID = newID("RET")
		record.CreatedAt = now
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, res, err
	}
	if len(records) == 0 {
		return nil, res, fmt.Errorf("%w: expected SalesUsername, SalesName, SKU_ID, SKU_Name, Quantity", models.ErrNoValidRows)
	}
	return records, res, nil
}

// BuildReturn normalizes one return row; ok is false if a field is missing
// or the quantity is not an integer.
func BuildReturn(salesUsername, salesName, skuID, skuName, quantity string) (models.ReturnRecord, bool) {
	salesUsername = strings.ToLower(strings.TrimSpace(salesUsername))
	salesName = strings.TrimSpace(salesName)
	skuID = strings.ToUpper(strings.TrimSpace(skuID))
	skuName = strings.TrimSpace(skuName)
	qty, err := strconv.Atoi(strings.TrimSpace(quantity))
	if salesUsername == "" || salesName == "" || skuID == "" || skuName == "" || err != nil {
		return models.ReturnRecord{}, false
	}
	return models.ReturnRecord{
		SalesID:   salesUsername,
		SalesName: salesName,
		SKUID:     skuID,
		SKUName:   skuName,
		Quantity:  qty,
	}, true
}

func eachRow(r io.Reader, minFields int, accept func([]string) bool) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var res Result
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to read csv: %w", err)
		}

		if len(record) < minFields {
			res.Skipped++
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if accept(record) {
			res.Rows++
		} else {
			res.Skipped++
		}
	}
}
