// blobstore.go
//
// Custodia - self-hosted personal asset and deadline tracking service
// Copyright (c) 2026 Custodia Authors
//
// This file is part of custodia.
// custodia is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// custodia is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with custodia.
// If not, see <https://www.gnu.org/licenses/>.

// Package storage provides path-addressed blob storage on the local
// filesystem, standing in for the hosted object store the mobile clients
// uploaded document files to. Blobs are addressed as bucket/path and served
// publicly under a static URL prefix.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore stores blobs under a root directory, one subdirectory per bucket.
type BlobStore struct {
	root      string
	publicURL string
}

// NewBlobStore creates the root directory if needed.
func NewBlobStore(root, publicURL string) (*BlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", root, err)
	}
	return &BlobStore{
		root:      root,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Root returns the root directory, for mounting as a static route.
func (s *BlobStore) Root() string {
	return s.root
}

// Upload writes data under bucket/path and returns the stored path. The
// returned path is what document rows persist in storage_path.
func (s *BlobStore) Upload(bucket, path string, data []byte, contentType string) (string, error) {
	rel, err := s.relPath(bucket, path)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", rel, err)
	}
	return rel, nil
}

// Remove deletes a stored blob. A missing blob is not an error: document
// deletion is best-effort about purging files.
func (s *BlobStore) Remove(storedPath string) error {
	rel, err := s.relPath("", storedPath)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob %s: %w", rel, err)
	}
	return nil
}

// PublicURL returns the URL a stored path is served at.
func (s *BlobStore) PublicURL(storedPath string) string {
	return s.publicURL + "/" + strings.TrimPrefix(storedPath, "/")
}

// Ping verifies the store is writable. Used by the health check.
func (s *BlobStore) Ping() error {
	probe := filepath.Join(s.root, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("blob store not writable: %w", err)
	}
	return os.Remove(probe)
}

// relPath joins bucket and path into a clean slash-separated path and rejects
// anything escaping the root.
func (s *BlobStore) relPath(bucket, path string) (string, error) {
	joined := path
	if bucket != "" {
		joined = bucket + "/" + path
	}
	rel := filepath.ToSlash(filepath.Clean("/" + joined))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return rel, nil
}
