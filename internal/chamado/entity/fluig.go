package entity

// Colleague is a Fluig user as returned by the "colleague" dataset.
type Colleague struct {
	ID   string
	Name string
	Mail string
}

// Employee holds HR data from the "ds_funcionarios" dataset.
type Employee struct {
	Registration string
	Name         string
	Email        string
	Role         string
	Section      string
	CostCenter   string
	Company      string
	Phone        string
}

// Service is an ITSM catalog entry.
type Service struct {
	DocumentID    string `json:"documentid"`
	Name          string `json:"servico"`
	Group         string `json:"grupo_servico"`
	Item          string `json:"item_servico"`
	UrgencyHigh   string `json:"urgencia_alta,omitempty"`
	UrgencyMedium string `json:"urgencia_media,omitempty"`
	UrgencyLow    string `json:"urgencia_baixa,omitempty"`
	Responsible   string `json:"ds_responsavel,omitempty"`
	Team          string `json:"equipe_executante,omitempty"`
	Impact        string `json:"impacto,omitempty"`
	KeyUser       string `json:"matric_keyuser,omitempty"`
}

// ProcessStart is the body of a Fluig process start request.
type ProcessStart struct {
	TargetState           string            `json:"targetState"`
	SubProcessTargetState string            `json:"subProcessTargetState,omitempty"`
	TargetAssignee        string            `json:"targetAssignee,omitempty"`
	FormFields            map[string]string `json:"formFields"`
}
