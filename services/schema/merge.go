package schema

import "citation-hand/models"

// Build erzeugt aus einer validierten Eingabe einen neuen, noch nicht gespeicherten Datensatz.
func Build(in *models.CitationFields, target Schema) *models.Citation {
	c := &models.Citation{}
	in.Apply(c)
	c.Type = target.Type
	purge(c, target)
	return c
}

// Merge wendet eine validierte Eingabe auf eine Kopie von current an. Felder, die für den
// resultierenden Typ nicht gültig sind, werden geleert. current bleibt unverändert.
func Merge(current *models.Citation, in *models.CitationFields, target Schema) *models.Citation {
	c := current.Clone()
	in.Apply(c)
	c.Type = target.Type
	purge(c, target)
	return c
}

func purge(c *models.Citation, target Schema) {
	for _, f := range models.AllFields() {
		if !target.Valid.Has(f) {
			c.Clear(f)
		}
	}
}
