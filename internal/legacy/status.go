package legacy

import "github.com/Togather-Foundation/booking/internal/domain/booking"

// Stored status values.
const (
	DJDisponivel = "disponivel"
	DJOcupado    = "ocupado"
	DJInativo    = "inativo"

	EventPendente   = "pendente"
	EventConfirmado = "confirmado"
	EventConcluido  = "concluido"
	EventCancelado  = "cancelado"

	ContractPendente  = "pendente"
	ContractConcluido = "concluido"
	ContractCancelado = "cancelado"
)

// DJStatus maps a stored status to availability. Anything unrecognised,
// including inativo, reads as unavailable.
func DJStatus(stored string) booking.AvailabilityStatus {
	switch stored {
	case DJDisponivel:
		return booking.AvailabilityAvailable
	case DJOcupado:
		return booking.AvailabilityBusy
	default:
		return booking.AvailabilityUnavailable
	}
}

func DJStoredStatus(status booking.AvailabilityStatus) string {
	switch status {
	case booking.AvailabilityAvailable:
		return DJDisponivel
	case booking.AvailabilityBusy:
		return DJOcupado
	default:
		return DJInativo
	}
}

// EventStatus maps a stored status. Unknown values read as cancelled.
func EventStatus(stored string) booking.EventStatus {
	switch stored {
	case EventPendente:
		return booking.EventPending
	case EventConfirmado:
		return booking.EventConfirmed
	case EventConcluido:
		return booking.EventCompleted
	default:
		return booking.EventCancelled
	}
}

func EventStoredStatus(status booking.EventStatus) string {
	switch status {
	case booking.EventPending:
		return EventPendente
	case booking.EventConfirmed:
		return EventConfirmado
	case booking.EventCompleted:
		return EventConcluido
	default:
		return EventCancelado
	}
}

// ContractStatus derives the domain status. A stored concluido or
// cancelado wins; otherwise the contract is signed once both sides signed.
func ContractStatus(stored *string, signedByProducer, signedByDJ bool) booking.ContractStatus {
	if stored != nil {
		switch *stored {
		case ContractConcluido:
			return booking.ContractCompleted
		case ContractCancelado:
			return booking.ContractCancelled
		}
	}
	if signedByProducer && signedByDJ {
		return booking.ContractSigned
	}
	return booking.ContractPending
}

func ContractStoredStatus(status booking.ContractStatus) string {
	switch status {
	case booking.ContractCompleted:
		return ContractConcluido
	case booking.ContractCancelled:
		return ContractCancelado
	default:
		return ContractPendente
	}
}
