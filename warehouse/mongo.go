//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// mongo.go - MongoDB staging store
package warehouse

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

// MongoError wraps Mongo store errors with context.
type MongoError struct {
	Op    string
	Table string
	Err   error
}

func (e *MongoError) Error() string {
	return fmt.Sprintf("mongo store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *MongoError) Unwrap() error {
	return e.Err
}

// MongoStore implements Store as one collection per table. Raw API
// payloads nest arbitrarily, which document storage handles without the
// flattening the relational store needs, so Mongo is the staging
// destination of choice when raw tables must be re-read by a later
// transform-only run.
type MongoStore struct {
	client   *mongo.Client
	database string
}

// NewMongoStore connects to the configured Mongo deployment.
func NewMongoStore(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, &MongoError{Op: "connect", Err: err}
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, &MongoError{Op: "ping", Err: err}
	}
	return &MongoStore{client: client, database: cfg.Database}, nil
}

// SaveTable implements Store: drop and rewrite the collection.
func (s *MongoStore) SaveTable(ctx context.Context, name string, table core.Table) error {
	coll := s.client.Database(s.database).Collection(name)
	if err := coll.Drop(ctx); err != nil {
		return &MongoError{Op: "drop", Table: name, Err: err}
	}
	if len(table) == 0 {
		return nil
	}

	docs := make([]interface{}, len(table))
	for i, rec := range table {
		docs[i] = bson.M(rec)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return &MongoError{Op: "insert", Table: name, Err: err}
	}
	return nil
}

// GetTable implements Store.
func (s *MongoStore) GetTable(ctx context.Context, name string) (core.Table, error) {
	coll := s.client.Database(s.database).Collection(name)
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, &MongoError{Op: "find", Table: name, Err: err}
	}
	defer cursor.Close(ctx)

	var table core.Table
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, &MongoError{Op: "decode", Table: name, Err: err}
		}
		delete(doc, "_id")
		table = append(table, core.Record(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, &MongoError{Op: "read", Table: name, Err: err}
	}
	return table, nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
