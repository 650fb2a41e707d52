// Package ris imports RIS tagged bibliographic exports into models.Item records.
package ris

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dtnitsch/cinii-translator/models"
)

// ErrNoInput is returned by Translate when SetString was never called.
var ErrNoInput = errors.New("ris: no input")

// ItemHandler receives every completed item. Returning an error stops the import.
type ItemHandler func(item *models.Item) error

// tagLine matches "TY  - JOUR"; the space after the hyphen is optional on
// empty values like "ER  -".
var tagLine = regexp.MustCompile(`^([A-Z][A-Z0-9])\s{1,2}-(?:\s(.*))?$`)

const bom = "\ufeff"

// Importer turns RIS text into items, one handler call per TY…ER record.
type Importer struct {
	text    *string
	handler ItemHandler
	logger  *slog.Logger
}

func NewImporter(logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer{logger: logger}
}

func (im *Importer) SetString(text string) {
	im.text = &text
}

func (im *Importer) SetHandler(h ItemHandler) {
	im.handler = h
}

// Detect reports whether text looks like RIS: the first non-blank line is a TY tag.
func Detect(text string) bool {
	scanner := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(text, bom)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := tagLine.FindStringSubmatch(line)
		return m != nil && m[1] == "TY"
	}
	return false
}

// Translate parses the input and calls the handler for each record in order.
func (im *Importer) Translate(ctx context.Context) error {
	if im.text == nil {
		return ErrNoInput
	}

	records, err := splitRecords(*im.text)
	if err != nil {
		return err
	}
	im.logger.Debug("RIS records parsed", "count", len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := rec.toItem(im.logger)
		complete(item)
		if im.handler == nil {
			continue
		}
		if err := im.handler(item); err != nil {
			return fmt.Errorf("ris: record %d: %w", i+1, err)
		}
	}
	return nil
}

type field struct {
	tag   string
	value string
}

type record []field

// splitRecords groups tag lines into records. Lines that carry no tag continue
// the previous field; anything before the first TY is ignored.
func splitRecords(text string) ([]record, error) {
	var records []record
	var current record
	inRecord := false

	scanner := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(text, bom)))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		m := tagLine.FindStringSubmatch(line)
		if m == nil {
			if inRecord && len(current) > 0 && strings.TrimSpace(line) != "" {
				last := &current[len(current)-1]
				last.value = joinContinuation(last.tag, last.value, strings.TrimSpace(line))
			}
			continue
		}

		tag, value := m[1], strings.TrimSpace(m[2])
		switch {
		case tag == "TY":
			if inRecord && len(current) > 0 {
				// missing ER; close the open record
				records = append(records, current)
			}
			current = record{{tag: tag, value: value}}
			inRecord = true
		case tag == "ER":
			if inRecord {
				records = append(records, current)
			}
			current = nil
			inRecord = false
		case inRecord:
			current = append(current, field{tag: tag, value: value})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ris: failed to read input: %w", err)
	}
	if inRecord && len(current) > 0 {
		records = append(records, current)
	}
	return records, nil
}

func joinContinuation(tag, prev, next string) string {
	if prev == "" {
		return next
	}
	switch tag {
	case "AB", "N1", "N2":
		return prev + "\n" + next
	}
	return prev + " " + next
}
