package draft

import (
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
)

const (
	// DraftKey слот с черновиком заявки.
	DraftKey = "seed-project-proposal-draft"
	// AdminSessionKey слот с токеном админской сессии.
	AdminSessionKey = "admin-authenticated"
)

// Store снимок черновика в одном слоте KV. Ошибки хранилища не выходят наружу:
// они пишутся в лог как предупреждение, источником истины остаётся память.
type Store struct {
	kv  KV
	key string
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, key: DraftKey}
}

// Save сериализует черновик целиком поверх предыдущего снимка.
func (s *Store) Save(d *entity.ProposalDraft) {
	raw, err := json.Marshal(d)
	if err != nil {
		s.warn("сериализация", err)
		return
	}
	if err := s.kv.Set(s.key, string(raw)); err != nil {
		s.warn("запись", err)
	}
}

// Load читает снимок поверх значений по умолчанию. Отсутствующие ключи
// остаются дефолтными. Поле неверного типа тоже остаётся дефолтным, остальные
// поля сохраняются. Нечитаемый снимок или снимок не-объект даёт чистую форму.
func (s *Store) Load() *entity.ProposalDraft {
	raw, err := s.kv.Get(s.key)
	if err != nil {
		if !errors.Is(err, ErrNoValue) {
			s.warn("чтение", err)
		}
		return entity.DefaultDraft()
	}

	d := entity.DefaultDraft()
	if err := json.Unmarshal([]byte(raw), d); err != nil {
		s.warn("разбор", err)
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return d
		}
		return entity.DefaultDraft()
	}
	return d
}

// Clear удаляет слот.
func (s *Store) Clear() {
	if err := s.kv.Delete(s.key); err != nil {
		s.warn("удаление", err)
	}
}

func (s *Store) warn(op string, err error) {
	logger.Entry(logrus.Fields{
		"key":   s.key,
		"op":    op,
		"code":  "STORAGE_WARNING",
		"error": err.Error(),
	}).Warn("draft: операция с локальным черновиком не удалась")
}
