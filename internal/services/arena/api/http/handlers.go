package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
	"github.com/louisbranch/stakepot/internal/services/arena/engine"
	"github.com/louisbranch/stakepot/internal/services/arena/notify"
	"github.com/louisbranch/stakepot/internal/services/arena/storage"
)

type createMatchRequest struct {
	Token      string `json:"token"`
	EntryFee   int64  `json:"entry_fee"`
	MaxPlayers int    `json:"max_players"`
}

type startMatchRequest struct {
	Questions []string `json:"questions"`
}

type submitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     int    `json:"answer"`
}

type endMatchRequest struct {
	Questions []string `json:"questions"`
	AnswerKey []int    `json:"answer_key"`
}

type cancelMatchRequest struct {
	Reason string `json:"reason"`
}

type addTokenRequest struct {
	Token string `json:"token"`
}

type setFeeRequest struct {
	Percent int `json:"percent"`
}

type setLimitRequest struct {
	Limit int `json:"limit"`
}

type matchesResponse struct {
	Matches     []engine.MatchView `json:"matches"`
	NextAfterID uint64             `json:"next_after_id,omitempty"`
}

type eventsResponse struct {
	Events       []notify.Envelope `json:"events"`
	NextAfterSeq int64             `json:"next_after_seq,omitempty"`
}

type amountResponse struct {
	Amount int64 `json:"amount"`
}

type scoreResponse struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

type escrowResponse struct {
	MatchID uint64 `json:"match_id"`
	Balance int64  `json:"balance"`
}

type treasuryResponse struct {
	Token   string `json:"token"`
	Balance int64  `json:"balance"`
}

type tokensResponse struct {
	Tokens []string `json:"tokens"`
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.engine.CreateMatch(r.Context(), callerIdentity(r), engine.CreateMatchInput{
		Token:      req.Token,
		EntryFee:   req.EntryFee,
		MaxPlayers: req.MaxPlayers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *api) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.engine.MatchDetails(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) handleListMatches(w http.ResponseWriter, r *http.Request) {
	var status *match.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := match.ParseStatus(raw)
		if !ok {
			writeError(w, r, apperrors.WithMetadata(apperrors.CodeRequestInvalid,
				"unknown status filter", map[string]string{"Param": "status"}))
			return
		}
		status = &parsed
	}
	afterID, err := queryUint64(r, "after_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := a.engine.ListMatchesPage(r.Context(), status, afterID, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := matchesResponse{Matches: views}
	if len(views) > 0 {
		resp.NextAfterID = views[len(views)-1].ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) handleJoinMatch(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.engine.JoinMatch(r.Context(), callerIdentity(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req startMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.engine.StartMatch(r.Context(), callerIdentity(r), id, req.Questions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.engine.SubmitAnswer(r.Context(), callerIdentity(r), id, req.QuestionID, req.Answer); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleEndMatch(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req endMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.engine.EndMatch(r.Context(), callerIdentity(r), id, req.Questions, req.AnswerKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) handleCancelMatch(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// The reason is optional; a bodyless cancel is still a cancel.
	var req cancelMatchRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, err)
		return
	}
	view, err := a.engine.CancelMatch(r.Context(), callerIdentity(r), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) handleClaimPrize(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := a.engine.ClaimPrize(r.Context(), callerIdentity(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: amount})
}

func (a *api) handleRefundEntryFee(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := a.engine.RefundEntryFee(r.Context(), callerIdentity(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: amount})
}

func (a *api) handleGetScore(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	player := r.URL.Query().Get("player")
	if player == "" {
		player = callerIdentity(r).Subject
	}
	score, err := a.engine.PlayerScore(r.Context(), id, player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Player: player, Score: score})
}

func (a *api) handleGetEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := a.engine.EscrowBalance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, escrowResponse{MatchID: id, Balance: balance})
}

func (a *api) handleMatchEvents(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	afterSeq, err := queryInt64(r, "after_seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := a.engine.MatchEvents(r.Context(), id, afterSeq, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponseFrom(records))
}

func (a *api) handleListEvents(w http.ResponseWriter, r *http.Request) {
	afterSeq, err := queryInt64(r, "after_seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := a.engine.Events(r.Context(), afterSeq, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponseFrom(records))
}

func (a *api) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	stats, err := a.engine.PlayerStats(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.engine.Config(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *api) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := a.engine.SupportedTokens(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokensResponse{Tokens: tokens})
}

func (a *api) handleAddToken(w http.ResponseWriter, r *http.Request) {
	var req addTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.engine.AddSupportedToken(r.Context(), callerIdentity(r), req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleRemoveToken(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	if err := a.engine.RemoveSupportedToken(r.Context(), callerIdentity(r), tok); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var req setFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.engine.SetFeePercent(r.Context(), callerIdentity(r), req.Percent); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleSetMatchLimit(w http.ResponseWriter, r *http.Request) {
	var req setLimitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.engine.SetMaxMatchesPerPlayer(r.Context(), callerIdentity(r), req.Limit); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Pause(r.Context(), callerIdentity(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Unpause(r.Context(), callerIdentity(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleTreasury(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	balance, err := a.engine.TreasuryBalance(r.Context(), callerIdentity(r), tok)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, treasuryResponse{Token: tok, Balance: balance})
}

func matchIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "matchID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeRequestInvalid,
			"match id must be a positive integer", map[string]string{"Param": "matchID"})
	}
	return id, nil
}

func queryUint64(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeRequestInvalid,
			"query parameter must be a non-negative integer", map[string]string{"Param": name})
	}
	return value, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeRequestInvalid,
			"query parameter must be a non-negative integer", map[string]string{"Param": name})
	}
	return value, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeRequestInvalid,
			"query parameter must be a non-negative integer", map[string]string{"Param": name})
	}
	return value, nil
}

// eventsResponseFrom renders journal records in the same envelope shape
// the live feeds publish, so consumers parse one format everywhere.
func eventsResponseFrom(records []storage.EventRecord) eventsResponse {
	resp := eventsResponse{Events: make([]notify.Envelope, 0, len(records))}
	for _, record := range records {
		resp.Events = append(resp.Events, notify.NewEnvelope(event.Event{
			Seq:         record.Seq,
			MatchID:     record.MatchID,
			Type:        event.Type(record.Type),
			Actor:       record.Actor,
			Timestamp:   record.CreatedAt,
			PayloadJSON: record.PayloadJSON,
		}))
	}
	if len(records) > 0 {
		resp.NextAfterSeq = records[len(records)-1].Seq
	}
	return resp
}
