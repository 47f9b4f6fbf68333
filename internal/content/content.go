// Package content загружает дневные схемы программ из JSON-файлов
// каталога контента. Структура дней живёт в файлах, а не в базе:
// <content_dir>/<слаг программы>/day<N>.json.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrDayNotFound возвращается, если файла дня не существует.
var ErrDayNotFound = errors.New("day schema not found")

// Loader читает и валидирует дневные схемы, кешируя разобранные файлы.
type Loader struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*models.DaySchema
}

// NewLoader создает Loader над каталогом контента.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: make(map[string]*models.DaySchema),
	}
}

// LoadDay возвращает схему дня программы. Файл разбирается один раз,
// далее отдается из кеша.
func (l *Loader) LoadDay(programSlug string, day int) (*models.DaySchema, error) {
	const op = "content.LoadDay"

	key := programSlug + "/" + strconv.Itoa(day)
	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := filepath.Join(l.dir, programSlug, fmt.Sprintf("day%d.json", day))
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, ErrDayNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var schema models.DaySchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if schema.Day != day {
		return nil, fmt.Errorf("%s: file %s declares day %d", op, path, schema.Day)
	}

	l.mu.Lock()
	l.cache[key] = &schema
	l.mu.Unlock()
	return &schema, nil
}

// CheckProgram проверяет, что все дни программы с 1 по dayCount
// присутствуют и валидны. Используется перед публикацией программы.
func (l *Loader) CheckProgram(programSlug string, dayCount int) error {
	const op = "content.CheckProgram"
	if dayCount <= 0 {
		return fmt.Errorf("%s: program %s has no days", op, programSlug)
	}
	for day := 1; day <= dayCount; day++ {
		if _, err := l.LoadDay(programSlug, day); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
