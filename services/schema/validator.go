package schema

import (
	"time"

	"citation-hand/domainerrors"
	"citation-hand/models"
)

// Validator prüft Eingaben beim Anlegen, beim Update im gleichen Typ und beim Typwechsel.
type Validator struct {
	registry *Registry
	formats  *Formats
}

// NewValidator erzeugt einen Validator auf Basis der Registry.
func NewValidator(registry *Registry, now func() time.Time) *Validator {
	return &Validator{registry: registry, formats: NewFormats(now)}
}

// Formats gibt die Formatprüfung frei, z.B. für importierte Datensätze.
func (v *Validator) Formats() *Formats {
	return v.formats
}

// ValidateCreate prüft einen neuen Datensatz und liefert das Schema seines Typs.
func (v *Validator) ValidateCreate(in *models.CitationFields) (Schema, error) {
	if !in.Type.HasValue() || in.Type.Value == "" {
		return Schema{}, missing(models.FieldType)
	}
	target, err := v.registry.Lookup(models.CitationType(in.Type.Value))
	if err != nil {
		return Schema{}, err
	}
	for _, f := range target.Required.Fields() {
		if !in.Has(f) {
			return Schema{}, missing(f)
		}
	}
	if err := v.checkAllowed(in, target); err != nil {
		return Schema{}, err
	}
	return target, v.formats.Check(in)
}

// ValidateUpdate prüft ein Teil-Update gegen den aktuellen Typ. Wird ein anderer Typ
// gesendet, müssen alle Felder mitkommen, die der neue Typ zusätzlich verlangt.
// Geliefert wird das Schema des resultierenden Typs.
func (v *Validator) ValidateUpdate(in *models.CitationFields, current models.CitationType) (Schema, error) {
	cur, err := v.registry.Lookup(current)
	if err != nil {
		return Schema{}, err
	}
	target := cur
	if in.Type.Set {
		if in.Type.Null || in.Type.Value == "" {
			return Schema{}, missing(models.FieldType)
		}
		if IsTypeChange(current, models.CitationType(in.Type.Value)) {
			target, err = v.registry.Lookup(models.CitationType(in.Type.Value))
			if err != nil {
				return Schema{}, err
			}
			additional := target.Required.Minus(cur.Required).Minus(NewFieldSet(models.FieldType))
			for _, f := range additional.Fields() {
				if !in.Has(f) {
					return Schema{}, missing(f)
				}
			}
		}
	}
	if err := v.checkAllowed(in, target); err != nil {
		return Schema{}, err
	}
	return target, v.formats.Check(in)
}

// IsTypeChange vergleicht Typen ohne Beachtung der Schreibweise.
func IsTypeChange(current, requested models.CitationType) bool {
	return models.NormalizeType(string(current)) != models.NormalizeType(string(requested))
}

// checkAllowed: jedes gesendete Feld muss für den Zieltyp gültig sein; null ist nur für
// das Jahr und für nicht verpflichtende Felder erlaubt.
func (v *Validator) checkAllowed(in *models.CitationFields, target Schema) error {
	present := in.Present()
	for _, f := range present {
		if !target.Valid.Has(f) {
			return domainerrors.ForField(domainerrors.CodeInvalidField, f.String(),
				"not valid for citation type "+string(target.Type))
		}
	}
	for _, f := range present {
		if in.IsNull(f) && target.Required.Has(f) && f != models.FieldYear {
			return missing(f)
		}
	}
	return nil
}

func missing(f models.Field) error {
	return domainerrors.ForField(domainerrors.CodeMissingField, f.String(), "required field is missing")
}
