package team

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errModel always fails generation.
type errModel struct{ err error }

func (m *errModel) Generate(context.Context, model.Request) (*model.Response, error) {
	return nil, m.err
}

func (m *errModel) Info() model.Info { return model.Info{Name: "err", Provider: "test"} }

func newTestTeam(routerModel model.Model, specialists ...*Specialist) *Team {
	byName := make(map[string]*Specialist, len(specialists))
	for _, s := range specialists {
		byName[s.Name()] = s
	}
	return &Team{
		router:      &router{llm: routerModel, instructions: core.DefaultRouterInstructions, logger: logging.NoOpLogger{}},
		specialists: specialists,
		byName:      byName,
		logger:      logging.NoOpLogger{},
	}
}

func newTestSpecialist(name, role string, llm model.Model) *Specialist {
	return &Specialist{name: name, role: role, llm: llm, logger: logging.NoOpLogger{}}
}

func TestAnswerRoutesToSelectedSpecialist(t *testing.T) {
	routerModel := model.NewMockModel("router", "test")
	routerModel.AddResponse("what is the price of AAPL?", "Analyst")

	analystModel := model.NewMockModel("analyst", "test")
	analystModel.AddResponse("what is the price of AAPL?", "AAPL trades at 210 USD.")

	team := newTestTeam(routerModel,
		newTestSpecialist("Researcher", "Finds information", model.NewMockModel("researcher", "test")),
		newTestSpecialist("Analyst", "Analyzes markets", analystModel),
	)

	reply, err := team.Answer(context.Background(), nil, "what is the price of AAPL?")
	require.NoError(t, err)
	assert.Equal(t, "Analyst", reply.Specialist)
	assert.Equal(t, "AAPL trades at 210 USD.", reply.Content)
}

func TestAnswerFallsBackOnUnmatchedRouterReply(t *testing.T) {
	routerModel := model.NewMockModel("router", "test")
	routerModel.AddResponse("hello", "I cannot decide, sorry")

	firstModel := model.NewMockModel("first", "test")
	firstModel.AddResponse("hello", "Hi there!")

	team := newTestTeam(routerModel,
		newTestSpecialist("Greeter", "Greets people", firstModel),
		newTestSpecialist("Analyst", "Analyzes markets", model.NewMockModel("analyst", "test")),
	)

	reply, err := team.Answer(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Greeter", reply.Specialist)
	assert.Equal(t, "Hi there!", reply.Content)
}

func TestAnswerRouterFailureIsDispatchError(t *testing.T) {
	boom := errors.New("router offline")
	team := newTestTeam(&errModel{err: boom},
		newTestSpecialist("Solo", "Does everything", model.NewMockModel("solo", "test")),
	)

	_, err := team.Answer(context.Background(), nil, "anything")
	var dispatchErr *core.DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, "routing", dispatchErr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestAnswerSpecialistFailureIsDispatchError(t *testing.T) {
	routerModel := model.NewMockModel("router", "test")
	routerModel.AddResponse("crash", "Broken")

	boom := errors.New("model overloaded")
	team := newTestTeam(routerModel,
		newTestSpecialist("Broken", "Always fails", &errModel{err: boom}),
	)

	_, err := team.Answer(context.Background(), nil, "crash")
	var dispatchErr *core.DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, "specialist", dispatchErr.Stage)
	assert.Equal(t, "Broken", dispatchErr.Specialist)
	assert.ErrorIs(t, err, boom)
}

func TestAnswerPassesHistoryToSpecialist(t *testing.T) {
	routerModel := model.NewMockModel("router", "test")
	routerModel.AddResponse("and now?", "Solo")

	soloModel := model.NewMockModel("solo", "test")
	soloModel.AddResponse("and now?", "Still 42.")

	team := newTestTeam(routerModel, newTestSpecialist("Solo", "Knows answers", soloModel))

	history := []core.Message{
		{Role: "user", Content: "what is the answer?"},
		{Role: "assistant", Content: "42"},
	}
	reply, err := team.Answer(context.Background(), history, "and now?")
	require.NoError(t, err)
	assert.Equal(t, "Still 42.", reply.Content)

	reqs := soloModel.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 3)
	assert.Equal(t, "what is the answer?", reqs[0].Messages[0].Content)
	assert.Equal(t, "and now?", reqs[0].Messages[2].Content)
}

func TestResolveSpecialistName(t *testing.T) {
	specialists := []*Specialist{
		newTestSpecialist("Researcher", "", nil),
		newTestSpecialist("Analyst", "", nil),
	}

	tests := []struct {
		reply string
		want  string
	}{
		{"Analyst", "Analyst"},
		{"analyst", "Analyst"},
		{" \"Researcher\". ", "Researcher"},
		{"I would pick the Analyst for this.", "Analyst"},
		{"nobody fits", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveSpecialistName(tt.reply, specialists), "reply=%q", tt.reply)
	}
}
