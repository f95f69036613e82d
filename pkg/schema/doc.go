// Package schema defines the Materials Project document types served by the
// mpapi resources and returned by the client resters.
//
// Documents are passive records: json tags name the wire fields, bson tags the
// stored fields, and `validate:"required"` marks fields that must be present
// whenever they are requested. Enumerated fields use typed string constants
// implementing Enum so that unknown values can be rejected on receipt.
//
//	var doc schema.ThermoDoc
//	_ = json.Unmarshal(raw, &doc)
//	if err := schema.Validate(doc, nil); err != nil {
//	    // errors.Is(err, schema.ErrValidation)
//	}
package schema
