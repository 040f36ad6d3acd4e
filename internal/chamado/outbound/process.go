package outbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

const (
	startProcessPath  = "/process-management/api/v2/processes/Abertura%20de%20Chamados/start"
	ticketDetailsPath = "/ecm/api/rest/ecm/workflowView/findDetailsMyRequests"
)

// StartProcess opens a chamado and returns the Fluig process instance id.
func (c *Client) StartProcess(ctx context.Context, payload entity.ProcessStart) (string, error) {
	body, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    startProcessPath,
		body:    payload,
		session: true,
	})
	if err != nil {
		return "", err
	}

	for _, path := range []string{"processInstanceId", "process_instance_id", "content.processInstanceId"} {
		if id := gjson.GetBytes(body, path); id.Exists() && id.String() != "" {
			return id.String(), nil
		}
	}

	return "", errors.New("fluig response has no processInstanceId")
}

type detailsRequest struct {
	ProcessInstanceID int64  `json:"processInstanceId"`
	TaskUserID        string `json:"taskUserId"`
}

// TicketDetails fetches the workflow view of an opened chamado as seen by
// the configured task user.
func (c *Client) TicketDetails(ctx context.Context, ticketID string) (entity.TicketDetails, error) {
	id, err := strconv.ParseInt(ticketID, 10, 64)
	if err != nil || id <= 0 {
		return entity.TicketDetails{}, errors.New("ticket id must be a positive number")
	}
	if c.cfg.TaskUserID == "" {
		return entity.TicketDetails{}, errors.New("fluig task user id is not configured")
	}

	body, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    ticketDetailsPath,
		body:    detailsRequest{ProcessInstanceID: id, TaskUserID: c.cfg.TaskUserID},
		session: true,
	})
	if err != nil {
		var serr *StatusError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
			return entity.TicketDetails{}, pkgerror.ErrNotFound
		}
		return entity.TicketDetails{}, err
	}

	if !gjson.ValidBytes(body) {
		return entity.TicketDetails{}, errors.New("fluig returned invalid ticket details")
	}

	return entity.TicketDetails{ID: ticketID, Raw: json.RawMessage(body)}, nil
}
