/*
Copyright © 2026 the boustherm authors.
This file is part of boustherm.

boustherm is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

boustherm is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with boustherm.  If not, see <http://www.gnu.org/licenses/>.
*/

package boustherm

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gonum.org/v1/gonum/mat"

	// Register the in-memory bucket driver for "mem://" URLs.
	_ "gocloud.dev/blob/memblob"
)

// Writer is a destination for model output arrays.
type Writer interface {
	// WriteArray stores v under name.
	WriteArray(ctx context.Context, name string, v []float64) error
}

// WriteMatrix writes m to w in row-major order.
func WriteMatrix(ctx context.Context, w Writer, name string, m mat.Matrix) error {
	r, c := m.Dims()
	v := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v = append(v, m.At(i, j))
		}
	}
	return w.WriteArray(ctx, name, v)
}

// EncodeFloats returns v as little-endian IEEE-754 doubles with no header.
func EncodeFloats(v []float64) []byte {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(x))
	}
	return b
}

// DecodeFloats is the inverse of EncodeFloats.
func DecodeFloats(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("boustherm: %d bytes is not a whole number of float64 values", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return v, nil
}

// BlobWriter writes output arrays to a storage bucket, retrying failed
// writes with exponential backoff.
type BlobWriter struct {
	Bucket *blob.Bucket

	// Prefix is prepended to every key.
	Prefix string

	// MaxRetries is the number of times a failed write is retried.
	MaxRetries uint64

	Log logrus.FieldLogger
}

// OpenOutput opens the output destination dest, which is either a bucket
// URL such as "file:///path/to/dir" or "mem://", or a local directory.
// Local directories are created if they don't exist.
func OpenOutput(ctx context.Context, dest string) (*BlobWriter, error) {
	var b *blob.Bucket
	var err error
	if strings.Contains(dest, "://") {
		b, err = blob.OpenBucket(ctx, dest)
	} else {
		dir := os.ExpandEnv(dest)
		if err = os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("boustherm: creating output directory: %v", err)
		}
		if dir, err = filepath.Abs(dir); err != nil {
			return nil, err
		}
		b, err = fileblob.OpenBucket(dir, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("boustherm: opening output location %s: %v", dest, err)
	}
	return &BlobWriter{Bucket: b, MaxRetries: 5, Log: logrus.StandardLogger()}, nil
}

// WriteArray implements Writer.
func (w *BlobWriter) WriteArray(ctx context.Context, name string, v []float64) error {
	return w.WriteBytes(ctx, name, EncodeFloats(v))
}

// WriteBytes stores b under name.
func (w *BlobWriter) WriteBytes(ctx context.Context, name string, b []byte) error {
	key := w.Prefix + name
	op := func() error {
		bw, err := w.Bucket.NewWriter(ctx, key, nil)
		if err != nil {
			return err
		}
		if _, err = bw.Write(b); err != nil {
			bw.Close()
			return err
		}
		return bw.Close()
	}
	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.MaxRetries), ctx),
		func(err error, d time.Duration) {
			if w.Log != nil {
				w.Log.WithField("key", key).Warnf("%v: retrying in %v", err, d)
			}
		})
	if err != nil {
		return fmt.Errorf("boustherm: writing %s: %v", key, err)
	}
	return nil
}

// ReadArray reads an array written by WriteArray.
func (w *BlobWriter) ReadArray(ctx context.Context, name string) ([]float64, error) {
	b, err := w.Bucket.ReadAll(ctx, w.Prefix+name)
	if err != nil {
		return nil, fmt.Errorf("boustherm: reading %s: %v", w.Prefix+name, err)
	}
	return DecodeFloats(b)
}

// Close closes the underlying bucket.
func (w *BlobWriter) Close() error { return w.Bucket.Close() }
