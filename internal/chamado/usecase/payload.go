package usecase

import (
	"strings"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

const (
	defaultPhone    = "65"
	openedAtLayout  = "02/01/2006 15:04"
	stateOpen       = "0"
	stateClassified = "5"
)

func baseFormFields(req entity.TicketRequest, colleague entity.Colleague, now time.Time) map[string]string {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = defaultPhone
	}

	name := colleague.Name
	if name == "" {
		name = req.Requester
	}
	mail := colleague.Mail
	if mail == "" {
		mail = req.Requester
	}

	fields := map[string]string{
		"num_tel_contato":   phone,
		"ds_titulo":         req.Title,
		"ds_chamado":        req.Description,
		"nm_emitente":       name,
		"NomeRegistrador":   name,
		"h_solicitante":     colleague.ID,
		"email_solicitante": mail,
		"ds_email_sol":      mail,
		"status":            "0",
		"dt_abertura":       now.Format(openedAtLayout),
		"ch_sap":            "0",
	}

	if attended := strings.TrimSpace(req.AttendedUser); attended != "" {
		fields["UsuarioAtendido"] = attended
	}

	return fields
}

func normalPayload(req entity.TicketRequest, colleague entity.Colleague, now time.Time) entity.ProcessStart {
	return entity.ProcessStart{
		TargetState:           stateOpen,
		SubProcessTargetState: stateOpen,
		TargetAssignee:        colleague.ID,
		FormFields:            baseFormFields(req, colleague, now),
	}
}

func classifiedPayload(
	req entity.TicketRequest,
	colleague entity.Colleague,
	employee entity.Employee,
	service entity.Service,
	now time.Time,
) entity.ProcessStart {
	fields := baseFormFields(req, colleague, now)

	fields["acesso"] = "0"
	fields["ds_grupo_servico"] = service.Group
	fields["ds_item_servico"] = service.Item
	fields["ds_servico"] = service.Name
	fields["urg_alta"] = service.UrgencyHigh
	fields["urg_media"] = service.UrgencyMedium
	fields["urg_baixa"] = service.UrgencyLow
	fields["ds_urgencia"] = "Média"
	fields["ds_resp_servico"] = service.Responsible
	fields["ds_equipe_resp"] = service.Team
	fields["equipe_resp"] = "ITSM_TODOS"
	fields["ds_tipo"] = "Solicitacao"
	fields["status_chamado"] = "Em Atendimento"
	fields["ds_time_HANA"] = "Interno"
	fields["ds_status_HANA"] = "Pendente"
	fields["ds_cargo"] = employee.Role
	fields["KeyUser"] = service.KeyUser
	fields["ds_secao"] = employee.Section
	fields["num_cr_elab"] = employee.CostCenter
	fields["fila_resp"] = ""
	fields["ds_empresa"] = employee.Company

	return entity.ProcessStart{
		TargetState:    stateClassified,
		TargetAssignee: colleague.ID,
		FormFields:     fields,
	}
}
