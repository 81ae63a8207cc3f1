package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmeshcher/suraksha-service/internal/model"
)

// ErrInvalidRecord возвращается, если запись нарушает инварианты модели.
var ErrInvalidRecord = errors.New("invalid record")

// Validator проверяет входные структуры по тегам validate.
type Validator struct {
	validate *validator.Validate
}

// NewValidator создаёт валидатор с правилами для дат и категорий услуг.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("servicetype", func(fl validator.FieldLevel) bool {
		return isKnownServiceType(model.ServiceType(fl.Field().String()))
	}); err != nil {
		panic(fmt.Sprintf("register servicetype validation: %v", err))
	}
	return &Validator{validate: v}
}

// Struct проверяет структуру и возвращает ErrInvalidRecord с перечнем нарушений.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: failed on %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
}

// CheckRecord проверяет инварианты записи клиента и всех записей её истории.
func CheckRecord(r model.CustomerRecord) error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if err := checkVisit(r.ServiceType, r.CustomServiceType, r.Price); err != nil {
		return err
	}
	for i, h := range r.History {
		if err := checkVisit(h.ServiceType, h.CustomServiceType, h.Price); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return nil
}

func checkVisit(st model.ServiceType, custom string, price int64) error {
	if !isKnownServiceType(st) {
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidRecord, st)
	}
	if price < 0 {
		return fmt.Errorf("%w: negative price %d", ErrInvalidRecord, price)
	}
	if st == model.ServiceTypeOther && strings.TrimSpace(custom) == "" {
		return fmt.Errorf("%w: custom service type required for %s", ErrInvalidRecord, st)
	}
	if st != model.ServiceTypeOther && custom != "" {
		return fmt.Errorf("%w: custom service type only allowed for %s", ErrInvalidRecord, model.ServiceTypeOther)
	}
	return nil
}

func isKnownServiceType(st model.ServiceType) bool {
	for _, known := range model.ServiceTypes {
		if st == known {
			return true
		}
	}
	return false
}
