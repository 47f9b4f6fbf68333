package models

import (
	"fmt"
	"strconv"
)

// FieldKind вид поля формы дня. Набор закрытый: каждое место,
// интерпретирующее значение поля, обязано разбирать все виды.
type FieldKind string

// Виды полей дневной формы.
const (
	KindText        FieldKind = "text"
	KindTextarea    FieldKind = "textarea"
	KindNumber      FieldKind = "number"
	KindSlider      FieldKind = "slider"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multi_select"
	KindBoolean     FieldKind = "boolean"
	KindRepeater    FieldKind = "repeater"
)

// DaySchema описывает структуру одного дня программы,
// загружаемую из JSON-файла каталога контента.
type DaySchema struct {
	Day      int       `json:"day"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section группа упражнений дня (утро, полдень, вечер или произвольный ключ).
type Section struct {
	Key       string     `json:"key"`
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise одно упражнение с набором полей формы.
type Exercise struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field описывает одно поле формы. Kind определяет, какая часть
// структуры значима: Min/Max — только для slider, Options — для select
// и multi_select, Fields/MinItems/MaxItems — для repeater.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label,omitempty"`
	Kind     FieldKind `json:"kind"`
	Min      *int      `json:"min,omitempty"`
	Max      *int      `json:"max,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Fields   []Field   `json:"fields,omitempty"`
	MinItems int       `json:"min_items,omitempty"`
	MaxItems int       `json:"max_items,omitempty"`
}

// SliderBounds возвращает границы слайдера; по умолчанию [0, 10].
func (f *Field) SliderBounds() (minVal, maxVal int) {
	minVal, maxVal = 0, 10
	if f.Min != nil {
		minVal = *f.Min
	}
	if f.Max != nil {
		maxVal = *f.Max
	}
	return minVal, maxVal
}

// SliderDefault возвращает значение слайдера по умолчанию — середину диапазона.
func (f *Field) SliderDefault() int {
	minVal, maxVal := f.SliderBounds()
	return (minVal + maxVal) / 2
}

// Validate проверяет схему дня: непустые ключи и корректность каждого поля.
func (d *DaySchema) Validate() error {
	const op = "models.DaySchema.Validate"
	if d.Day <= 0 {
		return fmt.Errorf("%s: day must be positive, got %d", op, d.Day)
	}
	for _, s := range d.Sections {
		if s.Key == "" {
			return fmt.Errorf("%s: section without key", op)
		}
		for _, e := range s.Exercises {
			if e.Key == "" {
				return fmt.Errorf("%s: exercise without key in section %q", op, s.Key)
			}
			for i := range e.Fields {
				if err := e.Fields[i].validate(false); err != nil {
					return fmt.Errorf("%s: section %q exercise %q: %w", op, s.Key, e.Key, err)
				}
			}
		}
	}
	return nil
}

func (f *Field) validate(nested bool) error {
	if f.Key == "" {
		return fmt.Errorf("field without key")
	}
	switch f.Kind {
	case KindText, KindTextarea, KindNumber, KindBoolean:
		return nil
	case KindSlider:
		minVal, maxVal := f.SliderBounds()
		if minVal >= maxVal {
			return fmt.Errorf("field %q: slider min %d must be below max %d", f.Key, minVal, maxVal)
		}
		return nil
	case KindSelect, KindMultiSelect:
		if len(f.Options) == 0 {
			return fmt.Errorf("field %q: %s without options", f.Key, f.Kind)
		}
		return nil
	case KindRepeater:
		if nested {
			return fmt.Errorf("field %q: repeater cannot be nested in a repeater", f.Key)
		}
		if len(f.Fields) == 0 {
			return fmt.Errorf("field %q: repeater without sub-fields", f.Key)
		}
		if f.MinItems < 0 || (f.MaxItems > 0 && f.MaxItems < f.MinItems) {
			return fmt.Errorf("field %q: invalid item bounds [%d, %d]", f.Key, f.MinItems, f.MaxItems)
		}
		for i := range f.Fields {
			if err := f.Fields[i].validate(true); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("field %q: unknown kind %q", f.Key, f.Kind)
	}
}

// FieldPath строит путь поля: <секция>.<упражнение>.<поле>.
// Путь уникален в пределах дня и служит ключом в DayState.Values.
func FieldPath(section, exercise, field string) string {
	return section + "." + exercise + "." + field
}

// RepeaterItemPath строит путь под-поля элемента repeater-а:
// <путь repeater-а>.<индекс>.<под-поле>.
func RepeaterItemPath(repeaterPath string, index int, sub string) string {
	return repeaterPath + "." + strconv.Itoa(index) + "." + sub
}
