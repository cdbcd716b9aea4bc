package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/blobs"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

const (
	fieldPDF     = "pdf"
	fieldPDFData = "data"
	fieldPDFKey  = "key"
)

// RecordService keeps entity documents per owner. Book PDF payloads are
// moved to the blob store on write and attached again on read.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobs.Store
	logger      logging.Logger
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, b blobs.Store, l logging.Logger) *RecordService {
	return &RecordService{db: db, repomanager: m, blobs: b, logger: l.With("module", "records")}
}

// List returns every document of kind owned by ownerID, each with its id.
func (s *RecordService) List(ctx context.Context, kind models.Kind, ownerID string) ([]json.RawMessage, error) {
	recs, err := s.repomanager.Records(s.db).List(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		doc, err := decodeDoc(rec.Doc)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		if kind == models.KindBook {
			if err := s.attachPDF(ctx, doc); err != nil {
				return nil, fmt.Errorf("record %s: %w", rec.ID, err)
			}
		}
		raw, err := encodeDoc(doc, rec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// Insert stores a new document and returns it with the assigned id. Any id
// sent by the client is discarded.
func (s *RecordService) Insert(ctx context.Context, kind models.Kind, ownerID string, record json.RawMessage) (json.RawMessage, error) {
	doc, err := decodeDoc(record)
	if err != nil {
		return nil, err
	}
	delete(doc, models.FieldID)
	if err := validateDoc(kind, doc); err != nil {
		return nil, err
	}

	stored := doc
	var key string
	if kind == models.KindBook {
		stored, key, err = s.offloadPDF(ctx, ownerID, doc)
		if err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	rec, err := s.repomanager.Records(s.db).Insert(ctx, kind, ownerID, raw)
	if err != nil {
		s.dropBlob(ctx, key)
		return nil, err
	}

	return encodeDoc(doc, rec.ID)
}

// Update merges patch into the document. Unknown ids, including ids that
// were never minted by this server, are common.ErrorNotFound.
func (s *RecordService) Update(ctx context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	p, err := decodeDoc(patch)
	if err != nil {
		return err
	}
	delete(p, models.FieldID)
	delete(p, models.FieldCreatedAt)

	repo := s.repomanager.Records(s.db)

	var oldKey, newKey string
	if kind == models.KindBook {
		if _, ok := p[fieldPDF]; ok {
			rec, err := repo.Get(ctx, kind, ownerID, id)
			if err != nil {
				return err
			}
			old, err := decodeDoc(rec.Doc)
			if err != nil {
				return err
			}
			oldKey = pdfKey(old)
			p, newKey, err = s.offloadPDF(ctx, ownerID, p)
			if err != nil {
				return err
			}
		}
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	if err := repo.Update(ctx, kind, ownerID, id, raw); err != nil {
		s.dropBlob(ctx, newKey)
		return err
	}
	if oldKey != "" && oldKey != pdfKey(p) {
		s.dropBlob(ctx, oldKey)
	}
	return nil
}

// Delete removes the document and its blob. Missing documents are not an error.
func (s *RecordService) Delete(ctx context.Context, kind models.Kind, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	repo := s.repomanager.Records(s.db)

	var key string
	if kind == models.KindBook {
		rec, err := repo.Get(ctx, kind, ownerID, id)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil
		case err != nil:
			return err
		}
		doc, err := decodeDoc(rec.Doc)
		if err != nil {
			return err
		}
		key = pdfKey(doc)
	}

	if err := repo.Delete(ctx, kind, ownerID, id); err != nil {
		return err
	}
	s.dropBlob(ctx, key)
	return nil
}

// offloadPDF moves inline PDF data of doc to the blob store. It returns a
// copy of doc referencing the payload by key, and the new key.
func (s *RecordService) offloadPDF(ctx context.Context, ownerID string, doc map[string]any) (map[string]any, string, error) {
	pdf, ok := doc[fieldPDF].(map[string]any)
	if !ok {
		return doc, "", nil
	}
	encoded, _ := pdf[fieldPDFData].(string)
	if encoded == "" {
		return doc, "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: pdf data: %v", common.ErrorValidation, err)
	}

	key := blobs.NewBookKey(ownerID)
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, "", err
	}

	outPDF := make(map[string]any, len(pdf))
	for k, v := range pdf {
		outPDF[k] = v
	}
	delete(outPDF, fieldPDFData)
	outPDF[fieldPDFKey] = key

	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	out[fieldPDF] = outPDF
	return out, key, nil
}

// attachPDF inlines the payload referenced by doc's pdf key.
func (s *RecordService) attachPDF(ctx context.Context, doc map[string]any) error {
	key := pdfKey(doc)
	if key == "" {
		return nil
	}
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blobs.ErrNotFound) {
			s.logger.Warn(ctx, "book payload missing from blob store", "key", key)
			return nil
		}
		return err
	}
	doc[fieldPDF].(map[string]any)[fieldPDFData] = base64.StdEncoding.EncodeToString(data)
	return nil
}

func (s *RecordService) dropBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "failed to delete book payload", "key", key, "error", err)
	}
}

func pdfKey(doc map[string]any) string {
	pdf, ok := doc[fieldPDF].(map[string]any)
	if !ok {
		return ""
	}
	key, _ := pdf[fieldPDFKey].(string)
	return key
}

func decodeDoc(raw json.RawMessage) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", common.ErrorValidation)
	}
	return doc, nil
}

func encodeDoc(doc map[string]any, id string) (json.RawMessage, error) {
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[models.FieldID] = id
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return raw, nil
}

// validateDoc decodes doc as its kind and applies the entity rules.
func validateDoc(kind models.Kind, doc map[string]any) error {
	var err error
	switch kind {
	case models.KindNote:
		var v models.Note
		err = validateAs(doc, &v)
	case models.KindBook:
		var v models.Book
		err = validateAs(doc, &v)
	case models.KindMemory:
		var v models.MemoryItem
		err = validateAs(doc, &v)
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

func validateAs(doc map[string]any, v interface{ Validate() error }) error {
	if err := models.FromDoc(doc, v); err != nil {
		return err
	}
	return v.Validate()
}
