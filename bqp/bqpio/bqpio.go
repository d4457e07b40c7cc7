// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package bqpio reads and writes the delimited text files a BQP solve
// consumes and produces: a dense n×n matrix, the p/lb/ub vectors, an initial
// iterate and the result vector. Values are separated by commas or
// whitespace; lines starting with '#' are ignored.
package bqpio

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/gomlx/hogwild/bqp"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// File names looked up by ReadProblem inside the input directory.
const (
	MatrixFile  = "q.txt"
	LinearFile  = "p.txt"
	LowerFile   = "lb.txt"
	UpperFile   = "ub.txt"
	InitialFile = "x0.txt"

	// DiagFile optionally overrides the diagonal taken from the matrix,
	// letting a caller supply a regularized diagonal.
	DiagFile = "diag.txt"
)

func isDelimiter(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// parseLine appends the numeric fields of one text line to dst.
func parseLine(dst []float64, line, path string, lineNum int) ([]float64, error) {
	for _, field := range strings.FieldsFunc(line, isDelimiter) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bqpio: %s:%d: invalid number %q", path, lineNum, field)
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// ReadVector reads a delimited numeric file as a flat vector. Line breaks and
// field delimiters are interchangeable.
func ReadVector(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bqpio: failed to open vector file %q", path)
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		values, err = parseLine(values, line, path, lineNum)
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "bqpio: failed reading %q", path)
	}
	if len(values) == 0 {
		return nil, errors.Errorf("bqpio: vector file %q holds no values", path)
	}
	return values, nil
}

// ReadMatrix reads a delimited numeric file as a dense matrix: one row per
// non-empty line, all rows the same length. It returns the row-major flat
// data along with the dimensions.
func ReadMatrix(path string) (rows, cols int, data []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, errors.Wrapf(err, "bqpio: failed to open matrix file %q", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		before := len(data)
		data, err = parseLine(data, line, path, lineNum)
		if err != nil {
			return 0, 0, nil, err
		}
		rowLen := len(data) - before
		if rows == 0 {
			cols = rowLen
		} else if rowLen != cols {
			return 0, 0, nil, errors.Errorf("bqpio: %s:%d: row has %d columns, want %d", path, lineNum, rowLen, cols)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, nil, errors.Wrapf(err, "bqpio: failed reading %q", path)
	}
	if rows == 0 {
		return 0, 0, nil, errors.Errorf("bqpio: matrix file %q holds no rows", path)
	}
	return rows, cols, data, nil
}

// WriteVector writes x to path, one value per line. It writes to a temporary
// file first and renames it into place, so a failed write never leaves a
// partial output file behind.
func WriteVector(path string, x []float64) error {
	var sb strings.Builder
	for _, v := range x {
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		sb.WriteByte('\n')
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "bqpio: failed to create output file in %q", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "bqpio: failed writing %q", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "bqpio: failed closing %q", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "bqpio: failed to move output into place at %q", path)
	}
	return nil
}

// ReadProblem loads a full problem from dir: the matrix from q.txt, vectors
// from p.txt/lb.txt/ub.txt and the initial iterate from x0.txt. If diag.txt
// is present it supplies the diagonal, otherwise the diagonal is extracted
// from the matrix. Dimension mismatches surface as errors from bqp.New.
func ReadProblem(dir string) (prob *bqp.Problem, initial []float64, err error) {
	required := map[string]bool{
		MatrixFile:  true,
		LinearFile:  true,
		LowerFile:   true,
		UpperFile:   true,
		InitialFile: true,
	}
	for name := range required {
		if _, statErr := os.Stat(filepath.Join(dir, name)); statErr != nil {
			names := maps.Keys(required)
			slices.Sort(names) // Stable message regardless of map order.
			return nil, nil, errors.Wrapf(statErr, "bqpio: input directory %q must hold the files %v", dir, names)
		}
	}

	rows, cols, q, err := ReadMatrix(filepath.Join(dir, MatrixFile))
	if err != nil {
		return nil, nil, err
	}
	if rows != cols {
		return nil, nil, errors.Errorf("bqpio: matrix in %q is %dx%d, want square", dir, rows, cols)
	}
	n := rows

	p, err := ReadVector(filepath.Join(dir, LinearFile))
	if err != nil {
		return nil, nil, err
	}
	lb, err := ReadVector(filepath.Join(dir, LowerFile))
	if err != nil {
		return nil, nil, err
	}
	ub, err := ReadVector(filepath.Join(dir, UpperFile))
	if err != nil {
		return nil, nil, err
	}
	initial, err = ReadVector(filepath.Join(dir, InitialFile))
	if err != nil {
		return nil, nil, err
	}

	var diag []float64
	diagPath := filepath.Join(dir, DiagFile)
	if _, statErr := os.Stat(diagPath); statErr == nil {
		diag, err = ReadVector(diagPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		diag = make([]float64, n)
		for i := 0; i < n; i++ {
			diag[i] = q[i*n+i]
		}
	}

	prob, err = bqp.New(n, q, p, lb, ub, diag)
	if err != nil {
		return nil, nil, err
	}
	if len(initial) != n {
		return nil, nil, errors.Errorf("bqpio: initial vector in %q has length %d, problem dimension is %d", dir, len(initial), n)
	}
	return prob, initial, nil
}
