package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/rulechess-backend/internal/engineapi"
	"github.com/benbeisheim/rulechess-backend/internal/model"
	"github.com/benbeisheim/rulechess-backend/internal/ws"
)

func stateFENs(t *testing.T, conn *fakeConn) []string {
	t.Helper()
	var fens []string
	for _, msg := range conn.messages() {
		if msg.Type != ws.MessageTypeGameState {
			continue
		}
		var state struct {
			FEN string `json:"fen"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &state))
		fens = append(fens, state.FEN)
	}
	return fens
}

func TestPublishKeepsMoveOrder(t *testing.T) {
	session, err := NewGameManager(model.RepetitionLastMove).CreateGame(CreateOptions{})
	require.NoError(t, err)
	conn := &fakeConn{}
	require.NoError(t, session.Register("alice", conn))

	session.mu.Lock()
	first, second := session.nextSeq(), session.nextSeq()
	session.mu.Unlock()

	firstState, secondState := session.State(), session.State()
	firstState.FEN, secondState.FEN = "first", "second"

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.publish(second, secondState, nil)
	}()

	select {
	case <-done:
		t.Fatal("later batch went out before the earlier one")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Len(t, conn.messages(), 1)

	session.publish(first, firstState, nil)
	<-done
	assert.Equal(t, []string{model.InitialFEN, "first", "second"}, stateFENs(t, conn))
}

func TestBotAndPlayerUpdatesArriveInOrder(t *testing.T) {
	replies := map[string]string{
		afterE4: "e7e5",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2": "b8c6",
	}
	engine := suggestFunc(func(_ context.Context, req engineapi.Request) (engineapi.Suggestion, error) {
		m, err := model.ParseMove(replies[req.FEN])
		if err != nil {
			return engineapi.Suggestion{}, engineapi.ErrEngine
		}
		return engineapi.Suggestion{BestMove: m}, nil
	})
	gs := newTestService(engine)
	state, err := gs.CreateGame("alice", CreateOptions{Mode: ModeBot, Color: model.White})
	require.NoError(t, err)
	conn := &fakeConn{}
	require.NoError(t, gs.RegisterConnection(state.ID, "alice", conn))

	_, err = gs.HandleMove(state.ID, "alice", move(t, "e2e4"))
	require.NoError(t, err)
	gs.Wait()
	_, err = gs.HandleMove(state.ID, "alice", move(t, "g1f3"))
	require.NoError(t, err)
	gs.Wait()

	fens := stateFENs(t, conn)
	require.Len(t, fens, 5)
	assert.Equal(t, model.InitialFEN, fens[0])
	assert.Equal(t, afterE4, fens[1])
	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2", fens[2])
	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", fens[3])
	assert.Equal(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", fens[4])
}
