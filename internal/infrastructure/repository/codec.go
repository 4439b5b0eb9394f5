// Package repository maps domain records onto document store collections.
package repository

import (
	"fmt"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	walletsCollection  = "wallets"
	projectsCollection = "projects"
)

func toDocument(v any) (port.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc port.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument[T any](doc port.Document) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode document %v: %w", doc["id"], err)
	}
	return out, nil
}
