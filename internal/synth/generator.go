// Package synth produces canonical synthetic clinical records for
// deterministic testing and sandbox rule evaluation.
//
// Pure data factory: one fixed record per resource type, identical on
// every call. Nothing here is load-bearing for engine correctness - the
// engine evaluates whatever records the caller supplies; this catalog
// only exists so rules can be exercised without real patient data.
package synth

import (
	"github.com/caseworks/reportable/internal/types"
)

// Generate returns one canonical synthetic record per named resource
// type, in input order. Unknown resource types are skipped; SupportedTypes
// lists the catalog. Returned records are fresh copies on every call so
// callers may decode-style mutate them without cross-test bleed.
func Generate(resourceTypes []string) []types.Record {
	records := make([]types.Record, 0, len(resourceTypes))
	for _, rt := range resourceTypes {
		factory, ok := catalog[rt]
		if !ok {
			continue
		}
		records = append(records, factory())
	}
	return records
}

// SupportedTypes returns the resource types in the catalog, in a fixed
// canonical order.
func SupportedTypes() []string {
	return []string{
		"Patient",
		"Condition",
		"Observation",
		"Encounter",
		"Immunization",
		"MedicationRequest",
	}
}

// catalog maps resource types to record factories. Factories return new
// maps each call; shapes follow FHIR R4 resource layouts.
var catalog = map[string]func() types.Record{
	"Patient":           syntheticPatient,
	"Condition":         syntheticCondition,
	"Observation":       syntheticObservation,
	"Encounter":         syntheticEncounter,
	"Immunization":      syntheticImmunization,
	"MedicationRequest": syntheticMedicationRequest,
}

func syntheticPatient() types.Record {
	return types.Record{
		"resourceType": "Patient",
		"id":           "synthetic-patient-1",
		"active":       true,
		"name": []any{
			map[string]any{
				"use":    "official",
				"family": "Rivera",
				"given":  []any{"Dana"},
			},
		},
		"gender":    "female",
		"birthDate": "1987-04-12",
		"address": []any{
			map[string]any{
				"use":        "home",
				"city":       "Portland",
				"state":      "OR",
				"postalCode": "97201",
				"country":    "US",
			},
		},
		"telecom": []any{
			map[string]any{
				"system": "phone",
				"value":  "555-0142",
				"use":    "home",
			},
		},
	}
}

func syntheticCondition() types.Record {
	return types.Record{
		"resourceType": "Condition",
		"id":           "synthetic-condition-1",
		"clinicalStatus": map[string]any{
			"coding": []any{
				map[string]any{
					"system": "http://terminology.hl7.org/CodeSystem/condition-clinical",
					"code":   "active",
				},
			},
		},
		"verificationStatus": map[string]any{
			"coding": []any{
				map[string]any{
					"system": "http://terminology.hl7.org/CodeSystem/condition-ver-status",
					"code":   "confirmed",
				},
			},
		},
		"code": map[string]any{
			"coding": []any{
				map[string]any{
					"system":  "http://hl7.org/fhir/sid/icd-10-cm",
					"code":    "U07.1",
					"display": "COVID-19",
				},
			},
			"text": "COVID-19",
		},
		"subject": map[string]any{
			"reference": "Patient/synthetic-patient-1",
		},
		"onsetDateTime": "2024-01-15T00:00:00Z",
	}
}

func syntheticObservation() types.Record {
	return types.Record{
		"resourceType": "Observation",
		"id":           "synthetic-observation-1",
		"status":       "final",
		"code": map[string]any{
			"coding": []any{
				map[string]any{
					"system":  "http://loinc.org",
					"code":    "94500-6",
					"display": "SARS-CoV-2 RNA Resp Ql NAA+probe",
				},
			},
		},
		"subject": map[string]any{
			"reference": "Patient/synthetic-patient-1",
		},
		"effectiveDateTime": "2024-01-14T10:00:00Z",
		"valueCodeableConcept": map[string]any{
			"coding": []any{
				map[string]any{
					"system":  "http://snomed.info/sct",
					"code":    "260373001",
					"display": "Detected",
				},
			},
		},
	}
}

func syntheticEncounter() types.Record {
	return types.Record{
		"resourceType": "Encounter",
		"id":           "synthetic-encounter-1",
		"status":       "finished",
		"class": map[string]any{
			"system": "http://terminology.hl7.org/CodeSystem/v3-ActCode",
			"code":   "AMB",
		},
		"type": []any{
			map[string]any{
				"coding": []any{
					map[string]any{
						"system":  "http://snomed.info/sct",
						"code":    "185345009",
						"display": "Encounter for symptom",
					},
				},
			},
		},
		"subject": map[string]any{
			"reference": "Patient/synthetic-patient-1",
		},
		"period": map[string]any{
			"start": "2024-01-14T09:00:00Z",
			"end":   "2024-01-14T09:30:00Z",
		},
	}
}

func syntheticImmunization() types.Record {
	return types.Record{
		"resourceType": "Immunization",
		"id":           "synthetic-immunization-1",
		"status":       "completed",
		"vaccineCode": map[string]any{
			"coding": []any{
				map[string]any{
					"system":  "http://hl7.org/fhir/sid/cvx",
					"code":    "208",
					"display": "COVID-19, mRNA, LNP-S, PF, 30 mcg/0.3 mL dose",
				},
			},
		},
		"patient": map[string]any{
			"reference": "Patient/synthetic-patient-1",
		},
		"occurrenceDateTime": "2023-10-02T00:00:00Z",
	}
}

func syntheticMedicationRequest() types.Record {
	return types.Record{
		"resourceType": "MedicationRequest",
		"id":           "synthetic-medicationrequest-1",
		"status":       "active",
		"intent":       "order",
		"medicationCodeableConcept": map[string]any{
			"coding": []any{
				map[string]any{
					"system":  "http://www.nlm.nih.gov/research/umls/rxnorm",
					"code":    "2587892",
					"display": "nirmatrelvir / ritonavir",
				},
			},
		},
		"subject": map[string]any{
			"reference": "Patient/synthetic-patient-1",
		},
		"authoredOn": "2024-01-15",
	}
}
