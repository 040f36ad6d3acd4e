package entity

type TicketKind string

const (
	TicketKindNormal     TicketKind = "normal"
	TicketKindClassified TicketKind = "classificado"
)

type OutcomeStatus string

const (
	OutcomeStatusSuccess OutcomeStatus = "SUCCESS"
	OutcomeStatusFailed  OutcomeStatus = "FAILED"
)

// Environment names a Fluig installation.
type Environment string

const (
	EnvironmentPRD Environment = "PRD"
	EnvironmentQLD Environment = "QLD"
)

type ServiceSource string

const (
	ServiceSourceLocal ServiceSource = "local"
	ServiceSourceAPI   ServiceSource = "api"
)
