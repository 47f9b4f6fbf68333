// Package services содержит бизнес-логику дневных ответов участника:
// нормализация значений по видам полей, черновики в Redis, миграция
// старого формата ключей и выгрузка ответов.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Ошибки уровня сервиса дневных ответов.
var (
	ErrDayNotFound = errors.New("program day not found")
	ErrBadExport   = errors.New("unsupported export format")
	ErrBadDay      = errors.New("day must be positive")
)

const draftTTL = 30 * 24 * time.Hour

// DayStateRepository определяет методы для работы с ответами в хранилище.
type DayStateRepository interface {
	UpsertDayState(ctx context.Context, st models.DayState) error
	GetDayState(ctx context.Context, userUID, programSlug string, day int) (*models.DayState, error)
	ListDayStates(ctx context.Context, userUID, programSlug string) ([]*models.DayState, error)
}

// Cache описывает методы черновикового кеша.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// SchemaLoader отдаёт схему дня из каталога контента.
type SchemaLoader interface {
	LoadDay(programSlug string, day int) (*models.DaySchema, error)
}

// DayStateService реализует сохранение и чтение ответов за день.
type DayStateService struct {
	repo    DayStateRepository
	cache   Cache
	schemas SchemaLoader
	log     *slog.Logger
}

// NewDayStateService создает новый экземпляр DayStateService.
func NewDayStateService(repo DayStateRepository, cache Cache, schemas SchemaLoader, log *slog.Logger) *DayStateService {
	return &DayStateService{
		repo:    repo,
		cache:   cache,
		schemas: schemas,
		log:     log,
	}
}

// draftKey ключ черновика, привязанный к пользователю.
func draftKey(userUID, programSlug string, day int) string {
	return fmt.Sprintf("daystate:%s:%s:%d", userUID, programSlug, day)
}

// legacyDraftKey старый формат ключа без привязки к пользователю.
func legacyDraftKey(programSlug string, day int) string {
	return fmt.Sprintf("daystate:%s:%d", programSlug, day)
}

func lastDayKey(userUID, programSlug string) string {
	return fmt.Sprintf("lastday:%s:%s", userUID, programSlug)
}

// Save нормализует значения по схеме дня и сохраняет ответы.
// База данных — источник истины; черновик в Redis обновляется
// по возможности, его ошибки только логируются.
func (s *DayStateService) Save(ctx context.Context, userUID, programSlug string, day int, req models.DummyDayState) (*models.DayState, error) {
	if day <= 0 {
		return nil, ErrBadDay
	}
	schema, err := s.schemas.LoadDay(programSlug, day)
	if err != nil {
		return nil, ErrDayNotFound
	}

	st := models.DayState{
		UserUID:      userUID,
		ProgramSlug:  programSlug,
		Day:          day,
		Values:       NormalizeValues(schema, req.Values),
		SliderBefore: req.SliderBefore,
		SliderAfter:  req.SliderAfter,
		Completed:    req.Completed,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.repo.UpsertDayState(ctx, st); err != nil {
		return nil, err
	}

	key := draftKey(userUID, programSlug, day)
	if err := s.cache.Set(key, st, draftTTL); err != nil {
		s.log.Warn("failed to write day state draft", slog.String("key", key), sl.Err(err))
	}
	if err := s.cache.Set(lastDayKey(userUID, programSlug), day, draftTTL); err != nil {
		s.log.Warn("failed to record last visited day",
			slog.String("user", userUID), slog.String("program", programSlug), sl.Err(err))
	}
	return &st, nil
}

// Load возвращает ответы за день: сперва черновик из Redis, затем база.
// Старый ключ черновика без пользователя мигрирует ровно один раз:
// копируется в новый ключ и удаляется.
func (s *DayStateService) Load(ctx context.Context, userUID, programSlug string, day int) (*models.DayState, error) {
	if day <= 0 {
		return nil, ErrBadDay
	}
	schema, err := s.schemas.LoadDay(programSlug, day)
	if err != nil {
		return nil, ErrDayNotFound
	}

	st, err := s.loadDraft(userUID, programSlug, day)
	if err != nil {
		s.log.Warn("failed to read day state draft", sl.Err(err))
	}
	if st == nil {
		st, err = s.repo.GetDayState(ctx, userUID, programSlug, day)
		if err != nil {
			return nil, err
		}
	}
	if st == nil {
		st = &models.DayState{
			UserUID:     userUID,
			ProgramSlug: programSlug,
			Day:         day,
			Values:      map[string]any{},
		}
	}
	st.Values = ApplyDefaults(schema, st.Values)

	if err := s.cache.Set(lastDayKey(userUID, programSlug), day, draftTTL); err != nil {
		s.log.Warn("failed to record last visited day",
			slog.String("user", userUID), slog.String("program", programSlug), sl.Err(err))
	}
	return st, nil
}

func (s *DayStateService) loadDraft(userUID, programSlug string, day int) (*models.DayState, error) {
	var st *models.DayState
	key := draftKey(userUID, programSlug, day)
	found, err := s.cache.Get(key, &st)
	if err != nil {
		return nil, err
	}
	if found {
		return st, nil
	}

	legacy := legacyDraftKey(programSlug, day)
	found, err = s.cache.Get(legacy, &st)
	if err != nil || !found {
		return nil, err
	}
	st.UserUID = userUID
	if err := s.cache.Set(key, st, draftTTL); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(legacy); err != nil {
		s.log.Warn("failed to delete legacy draft key", slog.String("key", legacy), sl.Err(err))
	}
	s.log.Info("migrated legacy day state draft", slog.String("from", legacy), slog.String("to", key))
	return st, nil
}

// LastDay возвращает последний посещённый день программы, 1 если записи нет.
func (s *DayStateService) LastDay(userUID, programSlug string) int {
	var day int
	found, err := s.cache.Get(lastDayKey(userUID, programSlug), &day)
	if err != nil || !found || day <= 0 {
		return 1
	}
	return day
}

// Export выгружает все ответы пользователя по программе в json или csv.
func (s *DayStateService) Export(ctx context.Context, userUID, programSlug, format string) ([]byte, string, error) {
	states, err := s.repo.ListDayStates(ctx, userUID, programSlug)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "json", "":
		data, err := json.MarshalIndent(states, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	case "csv":
		data, err := statesToCSV(states)
		if err != nil {
			return nil, "", err
		}
		return data, "text/csv", nil
	default:
		return nil, "", ErrBadExport
	}
}

// statesToCSV разворачивает карты значений в строки (день, путь, значение).
func statesToCSV(states []*models.DayState) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"day", "field_path", "value", "completed"}); err != nil {
		return nil, err
	}
	for _, st := range states {
		paths := make([]string, 0, len(st.Values))
		for p := range st.Values {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			raw, err := json.Marshal(st.Values[p])
			if err != nil {
				return nil, err
			}
			err = w.Write([]string{
				strconv.Itoa(st.Day), p, string(raw), strconv.FormatBool(st.Completed),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NormalizeValues приводит карту значений к схеме дня: неизвестные пути
// отбрасываются, значения неверного типа сбрасываются к нулю вида.
// Сохранение никогда не падает из-за кривых значений.
func NormalizeValues(schema *models.DaySchema, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	forEachField(schema, func(path string, f *models.Field) {
		v, ok := values[path]
		if !ok {
			return
		}
		out[path] = normalizeValue(f, v)
	})
	return out
}

// ApplyDefaults дополняет карту значений умолчаниями: слайдер без
// значения получает середину диапазона. Исходная карта не меняется.
func ApplyDefaults(schema *models.DaySchema, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	forEachField(schema, func(path string, f *models.Field) {
		if f.Kind != models.KindSlider {
			return
		}
		if _, ok := out[path]; !ok {
			out[path] = f.SliderDefault()
		}
	})
	return out
}

// forEachField обходит поля схемы и вызывает fn с путём каждого поля.
// Для repeater-а передаётся само поле: значения его элементов живут
// внутри массива по пути repeater-а.
func forEachField(schema *models.DaySchema, fn func(path string, f *models.Field)) {
	for si := range schema.Sections {
		sec := &schema.Sections[si]
		for ei := range sec.Exercises {
			ex := &sec.Exercises[ei]
			for fi := range ex.Fields {
				f := &ex.Fields[fi]
				fn(models.FieldPath(sec.Key, ex.Key, f.Key), f)
			}
		}
	}
}

// normalizeValue приводит одно значение к виду поля. Разбор закрытый:
// новое значение FieldKind обязано получить здесь свою ветку.
func normalizeValue(f *models.Field, v any) any {
	switch f.Kind {
	case models.KindText, models.KindTextarea:
		if s, ok := v.(string); ok {
			return s
		}
		return ""
	case models.KindNumber:
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			// единственная допустимая строка — пустой маркер "не заполнено"
			return ""
		default:
			return ""
		}
	case models.KindSlider:
		return clampSlider(f, v)
	case models.KindSelect:
		if s, ok := v.(string); ok {
			return s
		}
		return ""
	case models.KindMultiSelect:
		return toStringSlice(v)
	case models.KindBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
		return false
	case models.KindRepeater:
		return normalizeRepeater(f, v)
	default:
		return nil
	}
}

// clampSlider приводит значение слайдера к целому в [min, max];
// при нечисловом значении возвращает середину диапазона.
func clampSlider(f *models.Field, v any) int {
	minVal, maxVal := f.SliderBounds()
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	default:
		return f.SliderDefault()
	}
	if n < minVal {
		return minVal
	}
	if n > maxVal {
		return maxVal
	}
	return n
}

// toStringSlice приводит значение multi_select к списку строк без
// дубликатов; нестроковые элементы отбрасываются.
func toStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, el := range raw {
		s, ok := el.(string)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// normalizeRepeater приводит значение repeater-а к массиву объектов,
// каждый объект нормализуется по под-схеме. Длина ограничивается
// [min_items, max_items]: лишние элементы отбрасываются, недостающие
// дополняются пустыми.
func normalizeRepeater(f *models.Field, v any) []map[string]any {
	raw, _ := v.([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		obj, ok := el.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		item := make(map[string]any, len(f.Fields))
		for i := range f.Fields {
			sub := &f.Fields[i]
			if sv, ok := obj[sub.Key]; ok {
				item[sub.Key] = normalizeValue(sub, sv)
			}
		}
		items = append(items, item)
	}
	if f.MaxItems > 0 && len(items) > f.MaxItems {
		items = items[:f.MaxItems]
	}
	for len(items) < f.MinItems {
		items = append(items, emptyRepeaterItem(f))
	}
	return items
}

func emptyRepeaterItem(f *models.Field) map[string]any {
	item := make(map[string]any, len(f.Fields))
	for i := range f.Fields {
		sub := &f.Fields[i]
		item[sub.Key] = normalizeValue(sub, nil)
	}
	return item
}

// ToggleMultiSelect добавляет опцию, если её нет, и убирает, если есть.
// Дубликаты не появляются; порядок остальных опций сохраняется.
func ToggleMultiSelect(selected []string, option string) []string {
	out := make([]string, 0, len(selected)+1)
	removed := false
	for _, s := range selected {
		if s == option {
			removed = true
			continue
		}
		out = append(out, s)
	}
	if !removed {
		out = append(out, option)
	}
	return out
}

// AddRepeaterItem добавляет пустой элемент; при достижении max_items
// ничего не меняет.
func AddRepeaterItem(f *models.Field, items []map[string]any) []map[string]any {
	if f.MaxItems > 0 && len(items) >= f.MaxItems {
		return items
	}
	return append(items, emptyRepeaterItem(f))
}

// RemoveRepeaterItem убирает элемент по индексу; при min_items
// или неверном индексе ничего не меняет.
func RemoveRepeaterItem(f *models.Field, items []map[string]any, index int) []map[string]any {
	if index < 0 || index >= len(items) {
		return items
	}
	if len(items) <= f.MinItems {
		return items
	}
	out := make([]map[string]any, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	return out
}
