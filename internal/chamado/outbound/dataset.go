package outbound

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

const (
	datasetSearchPath = "/api/public/ecm/dataset/search"
	datasetQueryPath  = "/api/public/ecm/dataset/datasets/"
	serviceDataset    = "ITSM_Catalogo_Servico"
)

// dataset names the fields used to look a user up by mail or by name.
type dataset struct {
	id        string
	mailField string
	nameField string
}

var (
	colleagueDataset = dataset{id: "colleague", mailField: "mail", nameField: "colleagueName"}
	employeeDataset  = dataset{id: "ds_funcionarios", mailField: "Email", nameField: "Chapa"}
)

// firstValue returns the first record of a dataset answer. Fluig sends
// "content" either as a list or as an object with a "values" list.
func firstValue(body []byte) gjson.Result {
	content := gjson.GetBytes(body, "content")
	if content.IsArray() {
		return content.Get("0")
	}
	return content.Get("values.0")
}

// allValues returns every record of a dataset answer.
func allValues(body []byte) []gjson.Result {
	content := gjson.GetBytes(body, "content")
	if content.IsArray() {
		return content.Array()
	}
	return content.Get("values").Array()
}

func (c *Client) search(ctx context.Context, ds dataset, user string) (gjson.Result, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return gjson.Result{}, errors.New("user is required")
	}

	field := ds.nameField
	if strings.Contains(user, "@") {
		field = ds.mailField
	}

	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   datasetSearchPath,
		query:  url.Values{"datasetId": {ds.id}, "filterFields": {field + "," + user}},
	})
	if err != nil {
		return gjson.Result{}, err
	}

	record := firstValue(body)
	if !record.IsObject() {
		return gjson.Result{}, pkgerror.ErrNotFound
	}

	return record, nil
}

func (c *Client) FindColleague(ctx context.Context, user string) (entity.Colleague, error) {
	record, err := c.search(ctx, colleagueDataset, user)
	if err != nil {
		return entity.Colleague{}, err
	}

	id := record.Get("colleagueId").String()
	if id == "" {
		id = record.Get(`colleaguePK\.colleagueId`).String()
	}

	return entity.Colleague{
		ID:   id,
		Name: record.Get("colleagueName").String(),
		Mail: record.Get("mail").String(),
	}, nil
}

func (c *Client) FindEmployee(ctx context.Context, user string) (entity.Employee, error) {
	record, err := c.search(ctx, employeeDataset, user)
	if err != nil {
		return entity.Employee{}, err
	}

	return entity.Employee{
		Registration: record.Get("Chapa").String(),
		Name:         record.Get("Nome").String(),
		Email:        record.Get("Email").String(),
		Role:         record.Get("Função").String(),
		Section:      record.Get("Seção").String(),
		CostCenter:   record.Get("Centro de Custo").String(),
		Company:      record.Get("Empresa").String(),
		Phone:        record.Get("Telefone").String(),
	}, nil
}

type constraint struct {
	Field        string `json:"_field"`
	InitialValue int64  `json:"_initialValue"`
	FinalValue   int64  `json:"_finalValue"`
	Type         int    `json:"_type"`
}

type datasetQuery struct {
	Name        string       `json:"name"`
	Fields      []string     `json:"fields"`
	Constraints []constraint `json:"constraints"`
	Order       []string     `json:"order"`
}

// ServiceDetails reads one entry of the ITSM service dataset.
func (c *Client) ServiceDetails(ctx context.Context, documentID string) (entity.Service, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(documentID), 10, 64)
	if err != nil {
		return entity.Service{}, errors.New("service id must be numeric")
	}

	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   datasetQueryPath,
		body: datasetQuery{
			Name:        serviceDataset,
			Constraints: []constraint{{Field: "documentid", InitialValue: id, FinalValue: id, Type: 1}},
		},
	})
	if err != nil {
		return entity.Service{}, err
	}

	record := firstValue(body)
	if !record.IsObject() {
		return entity.Service{}, pkgerror.ErrNotFound
	}

	service := serviceFrom(record)
	if service.DocumentID == "" {
		service.DocumentID = strconv.FormatInt(id, 10)
	}

	return service, nil
}

func serviceFrom(r gjson.Result) entity.Service {
	return entity.Service{
		DocumentID:    r.Get("documentid").String(),
		Name:          r.Get("servico").String(),
		Group:         r.Get("grupo_servico").String(),
		Item:          r.Get("item_servico").String(),
		UrgencyHigh:   r.Get("urgencia_alta").String(),
		UrgencyMedium: r.Get("urgencia_media").String(),
		UrgencyLow:    r.Get("urgencia_baixa").String(),
		Responsible:   r.Get("ds_responsavel").String(),
		Team:          r.Get("equipe_executante").String(),
		Impact:        r.Get("impacto").String(),
		KeyUser:       r.Get("matric_keyuser").String(),
	}
}
