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

// s3.go - S3 object store for pipeline tables
package warehouse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

// S3Error wraps S3 store errors with context.
type S3Error struct {
	Op    string
	Table string
	Err   error
}

func (e *S3Error) Error() string {
	return fmt.Sprintf("s3 store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *S3Error) Unwrap() error {
	return e.Err
}

// s3Client is the subset of the S3 API the store uses; narrowed for tests.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store implements Store as JSON-lines objects in an S3 bucket. One
// object per table under the configured prefix.
type S3Store struct {
	client s3Client
	bucket string
	prefix string
}

// NewS3Store builds a store from the default AWS credential chain, or from
// static keys when the config carries them (MinIO and other self-hosted
// endpoints).
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &S3Error{Op: "configure", Err: err}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// NewS3StoreWithClient builds a store around an existing client. Used by
// tests and by callers that configure their own credentials.
func NewS3StoreWithClient(client s3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// SaveTable implements Store.
func (s *S3Store) SaveTable(ctx context.Context, name string, table core.Table) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range table {
		if err := enc.Encode(rec); err != nil {
			return &S3Error{Op: "encode", Table: name, Err: err}
		}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return &S3Error{Op: "put_object", Table: name, Err: err}
	}
	return nil
}

// GetTable implements Store.
func (s *S3Store) GetTable(ctx context.Context, name string) (core.Table, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, &S3Error{Op: "get_object", Table: name, Err: err}
	}
	defer out.Body.Close()

	var table core.Table
	scanner := bufio.NewScanner(out.Body)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec core.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, &S3Error{Op: "decode", Table: name, Err: err}
		}
		table = append(table, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &S3Error{Op: "read", Table: name, Err: err}
	}
	return table, nil
}

// Close implements Store.
func (s *S3Store) Close() error { return nil }

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name + ".jsonl"
	}
	return s.prefix + "/" + name + ".jsonl"
}
