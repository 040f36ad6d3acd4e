package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requester = "ana@uisa.com.br"

func TestSubstitute(t *testing.T) {
	row := entity.Row{Number: 7, Cells: map[string]string{"A": "Impressora", "B": "<A>", "AB": "x"}}

	out, missing := substitute(context.Background(), "Troca de <a> na <B> / <ab> <Z> <1> <>", row)

	assert.Equal(t, "Troca de Impressora na <A> / x <Z> <1> <>", out)
	assert.Equal(t, []string{"Z"}, missing)
}

func TestSelectRows(t *testing.T) {
	numbers := []int{1, 2, 3, 5, 6}

	tests := []struct {
		name       string
		skipHeader bool
		start      int
		count      int
		want       []int
	}{
		{name: "all", start: 1, count: 10, want: []int{1, 2, 3, 5, 6}},
		{name: "skip header", skipHeader: true, start: 1, count: 10, want: []int{2, 3, 5, 6}},
		{name: "start inside gap", skipHeader: true, start: 4, count: 10, want: []int{5, 6}},
		{name: "count cap", skipHeader: true, start: 1, count: 2, want: []int{2, 3}},
		{name: "start past end", start: 50, count: 3, want: []int{}},
		{name: "header skipped before start filter", skipHeader: true, start: 3, count: 1, want: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectRows(numbers, tt.skipHeader, tt.start, tt.count))
		})
	}
}

func TestOpenBatchFilesSelectedRows(t *testing.T) {
	env := newTestEnv()
	env.rows.stores[requester] = sampleRows()
	env.fluig.failTitles["Troca de Monitor"] = errors.New("fluig: status 500: boom")

	report, err := env.uc.OpenBatch(context.Background(), BatchInput{
		Requester:   requester,
		Title:       "Troca de <A>",
		Description: "Equipamento <a> em <B>",
		Count:       3,
		Start:       1,
		SkipHeader:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 3)

	assert.Equal(t, entity.RowOutcome{Row: 2, Success: true, Message: "ticket created", Title: "Troca de Impressora", TicketID: "1001"}, report.Outcomes[0])
	assert.Equal(t, 3, report.Outcomes[1].Row)
	assert.False(t, report.Outcomes[1].Success)
	assert.Contains(t, report.Outcomes[1].Message, "boom")
	assert.Equal(t, 5, report.Outcomes[2].Row)
	assert.True(t, report.Outcomes[2].Success)

	require.Len(t, env.fluig.started, 2)
	assert.Equal(t, "Equipamento Teclado em <B>", env.fluig.started[1].FormFields["ds_chamado"])

	stored, ok := env.reports.reports[report.ID]
	require.True(t, ok)
	assert.Equal(t, report.Succeeded, stored.Succeeded)

	require.Len(t, env.events.events, 2)
	assert.Equal(t, report.ID, env.events.events[0].BatchID)
	assert.Equal(t, 2, env.events.events[0].Row)
}

func TestOpenBatchRowFailsValidationAfterSubstitution(t *testing.T) {
	env := newTestEnv()
	env.rows.stores[requester] = entity.NewRowStore([]entity.Row{
		{Number: 1, Cells: map[string]string{"A": "   "}},
		{Number: 2, Cells: map[string]string{"A": "ok"}},
	})

	report, err := env.uc.OpenBatch(context.Background(), BatchInput{
		Requester: requester, Title: "<A>", Description: "d", Count: 5, Start: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Outcomes[0].Message, "title is required")
}

func TestOpenBatchWithoutSpreadsheet(t *testing.T) {
	env := newTestEnv()

	report, err := env.uc.OpenBatch(context.Background(), BatchInput{
		Requester: requester, Title: "t", Description: "d", Count: 1, Start: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, 0, report.Outcomes[0].Row)
	assert.False(t, report.Outcomes[0].Success)
	assert.Empty(t, env.fluig.started)
}

func TestOpenBatchEmptySelection(t *testing.T) {
	env := newTestEnv()
	env.rows.stores[requester] = sampleRows()

	report, err := env.uc.OpenBatch(context.Background(), BatchInput{
		Requester: requester, Title: "t", Description: "d", Count: 2, Start: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, 40, report.Outcomes[0].Row)
}

func TestOpenBatchRejectsInvalidWindow(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.OpenBatch(context.Background(), BatchInput{Requester: requester, Title: "t", Description: "d", Count: 0, Start: 1})

	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeInvalidInput, perr.Code())
}

func TestOpenBatchUnknownRequester(t *testing.T) {
	env := newTestEnv()
	env.rows.stores["bob@uisa.com.br"] = sampleRows()

	report, err := env.uc.OpenBatch(context.Background(), BatchInput{
		Requester: "bob@uisa.com.br", Title: "t <A>", Description: "d", Count: 2, Start: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Failed)
	assert.Contains(t, report.Outcomes[0].Message, "not found in Fluig")
}

func TestPreview(t *testing.T) {
	env := newTestEnv()
	env.rows.stores[requester] = sampleRows()

	result, err := env.uc.Preview(context.Background(), BatchInput{
		Requester: requester, Title: "<A>", Description: "<B> <C>", Count: 2, Start: 3, SkipHeader: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	require.Len(t, result.Items, 2)
	assert.Equal(t, PreviewItem{Row: 3, Title: "Monitor", Description: "Sala 2 <C>", MissingColumns: []string{"C"}}, result.Items[0])
	assert.Equal(t, []string{"B", "C"}, result.Items[1].MissingColumns)
	assert.Empty(t, env.fluig.started)

	_, err = env.uc.Preview(context.Background(), BatchInput{Requester: "bob@uisa.com.br", Count: 1, Start: 1})
	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeNotFound, perr.Code())
}

func TestOpenTicketNormalPayload(t *testing.T) {
	env := newTestEnv()

	result, err := env.uc.OpenTicket(context.Background(), OpenTicketInput{
		Requester:    requester,
		Title:        " Impressora ",
		Description:  "Sem toner",
		AttendedUser: " Joao ",
	})
	require.NoError(t, err)
	assert.Equal(t, "1001", result.TicketID)
	assert.Equal(t, entity.TicketKindNormal, result.Kind)

	require.Len(t, env.fluig.started, 1)
	p := env.fluig.started[0]
	assert.Equal(t, "0", p.TargetState)
	assert.Equal(t, "0", p.SubProcessTargetState)
	assert.Equal(t, "c-ana", p.TargetAssignee)
	assert.Equal(t, "Impressora", p.FormFields["ds_titulo"])
	assert.Equal(t, "65", p.FormFields["num_tel_contato"])
	assert.Equal(t, "09/03/2026 14:05", p.FormFields["dt_abertura"])
	assert.Equal(t, "Ana Souza", p.FormFields["nm_emitente"])
	assert.Equal(t, "Joao", p.FormFields["UsuarioAtendido"])
	_, hasService := p.FormFields["ds_servico"]
	assert.False(t, hasService)
}

func TestOpenTicketClassifiedPayload(t *testing.T) {
	env := newTestEnv()
	env.fluig.employees[requester] = entity.Employee{Role: "Analista", Section: "TI", CostCenter: "110051404", Company: "UISA"}
	env.fluig.services["42"] = entity.Service{DocumentID: "42", Name: "Acesso VPN", Group: "Infra", Item: "Rede", KeyUser: "9001"}

	result, err := env.uc.OpenTicket(context.Background(), OpenTicketInput{
		Requester: requester, Title: "VPN", Description: "Liberar", ServiceID: "42", Phone: "5565999",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketKindClassified, result.Kind)

	p := env.fluig.started[0]
	assert.Equal(t, "5", p.TargetState)
	assert.Equal(t, "", p.SubProcessTargetState)
	assert.Equal(t, "Acesso VPN", p.FormFields["ds_servico"])
	assert.Equal(t, "Infra", p.FormFields["ds_grupo_servico"])
	assert.Equal(t, "9001", p.FormFields["KeyUser"])
	assert.Equal(t, "Analista", p.FormFields["ds_cargo"])
	assert.Equal(t, "110051404", p.FormFields["num_cr_elab"])
	assert.Equal(t, "ITSM_TODOS", p.FormFields["equipe_resp"])
	assert.Equal(t, "Média", p.FormFields["ds_urgencia"])
	assert.Equal(t, "5565999", p.FormFields["num_tel_contato"])

	require.Len(t, env.catalog.saved, 1)
}

func TestOpenTicketClassifiedUnknownService(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.OpenTicket(context.Background(), OpenTicketInput{
		Requester: requester, Title: "VPN", Description: "Liberar", ServiceID: "77",
	})

	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeNotFound, perr.Code())
	assert.Empty(t, env.fluig.started)
}

func TestOpenTicketUpstreamError(t *testing.T) {
	env := newTestEnv()
	env.fluig.failTitles["x"] = errors.New("fluig: status 502")

	_, err := env.uc.OpenTicket(context.Background(), OpenTicketInput{Requester: requester, Title: "x", Description: "y"})

	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeUpstream, perr.Code())
	assert.Empty(t, env.events.events)
}

func TestServiceDetailsCacheFirst(t *testing.T) {
	env := newTestEnv()
	env.catalog.cached["10"] = entity.Service{DocumentID: "10", Name: "cached"}
	env.fluig.services["11"] = entity.Service{DocumentID: "11", Name: "remote"}

	res, err := env.uc.ServiceDetails(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceSourceLocal, res.Source)

	res, err = env.uc.ServiceDetails(context.Background(), "11")
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceSourceAPI, res.Source)
	assert.Equal(t, "remote", res.Service.Name)
	require.Len(t, env.catalog.saved, 1)

	_, err = env.uc.ServiceDetails(context.Background(), "abc")
	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeInvalidInput, perr.Code())
}

func TestFindService(t *testing.T) {
	env := newTestEnv()
	env.catalog.services = []entity.Service{{DocumentID: "10", Name: " Acesso VPN "}}
	env.catalog.cached["10"] = entity.Service{DocumentID: "10", Name: "Acesso VPN", Group: "Infra"}

	res, err := env.uc.FindService(context.Background(), "Acesso VPN")
	require.NoError(t, err)
	assert.Equal(t, "Infra", res.Service.Group)

	_, err = env.uc.FindService(context.Background(), "Outro")
	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeNotFound, perr.Code())
}

func TestLoadSheetAndClear(t *testing.T) {
	env := newTestEnv()

	result, err := env.uc.LoadSheet(context.Background(), requester, "lote.csv", strings.NewReader("a,b\n\nc,d\n"))
	require.NoError(t, err)
	assert.Equal(t, SheetResult{Rows: 2, FirstRow: 1, LastRow: 3}, result)

	_, err = env.uc.LoadSheet(context.Background(), requester, "lote.pdf", bytes.NewReader(nil))
	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeInvalidInput, perr.Code())

	require.NoError(t, env.uc.ClearSheet(context.Background(), requester))
	_, ok := env.rows.stores[requester]
	assert.False(t, ok)
}

func TestOpenBatchFromUploadDiscardsRows(t *testing.T) {
	env := newTestEnv()

	report, err := env.uc.OpenBatchFromUpload(context.Background(), BatchInput{
		Requester: requester, Title: "<A>", Description: "<B>", Count: 10, Start: 1, SkipHeader: true,
	}, "lote.csv", strings.NewReader("titulo,descricao\nImpressora,Sala 1\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, []string{requester}, env.rows.deleted)
}

func TestReport(t *testing.T) {
	env := newTestEnv()
	env.rows.stores[requester] = sampleRows()
	env.fluig.failTitles["Monitor"] = errors.New("boom")

	report, err := env.uc.OpenBatch(context.Background(), BatchInput{
		Requester: requester, Title: "<A>", Description: "d", Count: 10, Start: 2,
	})
	require.NoError(t, err)

	res, err := env.uc.Report(context.Background(), report.ID, OutcomeFilter{Statuses: []entity.OutcomeStatus{entity.OutcomeStatusFailed}}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 3, res.Outcomes[0].Row)

	_, err = env.uc.Report(context.Background(), "missing", OutcomeFilter{}, 1, 10)
	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeNotFound, perr.Code())
}

func TestHistoryRequiresRequester(t *testing.T) {
	env := newTestEnv()
	env.reports.history = []entity.HistoryEntry{{TicketID: "1", Requester: requester}}

	entries, err := env.uc.History(context.Background(), requester, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = env.uc.History(context.Background(), " ", 10)
	assert.Error(t, err)
}

func TestTicketDetails(t *testing.T) {
	env := newTestEnv()

	details, err := env.uc.TicketDetails(context.Background(), " 48213 ")
	require.NoError(t, err)
	assert.Equal(t, "48213", details.ID)
	assert.JSONEq(t, `{"content":{"processInstanceId":48213}}`, string(details.Raw))

	for _, id := range []string{"", "abc", "0", "-3"} {
		_, err = env.uc.TicketDetails(context.Background(), id)
		var perr *pkgerror.Error
		require.True(t, errors.As(err, &perr), id)
		assert.Equal(t, pkgerror.CodeInvalidInput, perr.Code(), id)
	}

	env.fluig.detailsErr = pkgerror.ErrNotFound
	_, err = env.uc.TicketDetails(context.Background(), "404")
	var perr *pkgerror.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeNotFound, perr.Code())

	env.fluig.detailsErr = errors.New("fluig returned status 500")
	_, err = env.uc.TicketDetails(context.Background(), "48213")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerror.CodeUpstream, perr.Code())
}
