package workflow

import "github.com/crediflow/collections-service/internal/domain"

// Result codes with dedicated business rules. The full result vocabulary
// lives in the rule tables; codes not listed here pass through unchanged.
const (
	ResultPromiseOfPayment    = "PROMESA_DE_PAGO"
	ResultConfirmsPayment     = "CONFIRMA_HABER_PAGO"
	ResultConfirmsInstallment = "CONFIRMA_PAGO_DE_CUOTA"
)

// Concept codes qualifying a payment confirmation.
const (
	ConceptContado         = "CONTADO"
	ConceptEntregaConvenio = "ENTREGA_CONVENIO"
	ConceptPagosACuenta    = "PAGOS_A_CUENTA"
)

// States referenced by the business rules. They must exist in the configured
// state graph for the suggestions to be applicable.
const (
	StateCancelado   = "CANCELADO"
	StateTransaccion = "TRANSACCION"
)

const reasonValidateLumpSum = "Validar pago de cancelacion contado"

// Resolution is the resolver's proposal: a suggested next state (may be
// empty), whether applying it needs supervisor approval, and the side-effect
// directives to record.
type Resolution struct {
	SuggestedNextState string
	SupervisorRequired bool
	Actions            []domain.Action
	Notes              []string
}

// Resolve applies the business rules to a validated submission. Pure: no I/O,
// no mutation of fields. The effective concept for a payment confirmation is
// lastPromiseConcept when carried, otherwise the concept supplied in the
// request; the agent is confirming a previously promised payment type.
func Resolve(result, concept, lastPromiseConcept string, fields map[string]any) Resolution {
	var res Resolution

	switch result {
	case ResultPromiseOfPayment:
		// The promise is captured by the interaction record alone.

	case ResultConfirmsPayment:
		effective := lastPromiseConcept
		if effective == "" {
			effective = concept
		}
		switch effective {
		case ConceptContado:
			res.SupervisorRequired = true
			res.SuggestedNextState = StateCancelado
			res.Actions = append(res.Actions, domain.Action{
				Type:   domain.ActionCreateSupervisorTicket,
				Reason: reasonValidateLumpSum,
			})
			res.Notes = append(res.Notes, "Al aprobar supervisor, cambiar a CANCELADO.")
		case ConceptEntregaConvenio:
			res.SuggestedNextState = StateTransaccion
			res.Actions = append(res.Actions, domain.Action{
				Type:          domain.ActionActivateAgreement,
				AgreementType: "CONVENIO",
				Data: pickFields(fields,
					"entregaMonto", "entregaFecha", "cuotasTotales", "montoCuota", "segundaCuotaVence"),
			})
		case ConceptPagosACuenta:
			res.SuggestedNextState = StateTransaccion
			res.Actions = append(res.Actions, domain.Action{
				Type:          domain.ActionActivateAgreement,
				AgreementType: ConceptPagosACuenta,
				Data: pickFields(fields,
					"entregaMonto", "entregaFecha", "pagosACuentaTotales", "montoPorPago", "segundaCuotaVence"),
			})
		}

	case ResultConfirmsInstallment:
		res.Actions = append(res.Actions, domain.Action{
			Type: domain.ActionRegisterInstallmentPayment,
		})
	}

	return res
}

func pickFields(fields map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = fields[k]
	}
	return out
}
