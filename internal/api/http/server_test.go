package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	apitypes "github.com/weisyn/splitproof/internal/api/types"
	apiconfig "github.com/weisyn/splitproof/internal/config/api"
	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/dataset"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/internal/testutil"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 测试环境
// ============================================================================

type testServer struct {
	server  *Server
	manager *splitproof.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	initializeGinMode()

	store := testutil.NewTestBadgerStore(t)
	opts := spconfig.DefaultOptions()
	opts.MaxRows = 16
	opts.Ratio = types.Ratio{Train: 75, Total: 100}
	m, err := splitproof.NewManager(testutil.NewTestLogger(), opts, store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Stop() })

	registry := bounty.New(testutil.NewTestLogger(), store, m, nil, nil)
	s := NewServer(testutil.NewTestLogger(), apiconfig.New(nil).GetOptions(), m, registry, nil)
	return &testServer{server: s, manager: m}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func requireProblem(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var p apitypes.ProblemDetails
	decodeBody(t, w, &p)
	require.Equal(t, code, p.Code)
	require.NotEmpty(t, p.TraceID)
}

func exampleDataset(t *testing.T) ([]types.RowHash, types.MerkleRoot, types.Seed) {
	t.Helper()
	rows := dataset.ExampleRows(4)
	root, err := commitment.Commit(rows)
	require.NoError(t, err)
	return rows, root, testutil.NewTestSeed(0x42)
}

// ============================================================================
// 无状态端点
// ============================================================================

func TestCommit(t *testing.T) {
	ts := newTestServer(t)
	rows, root, _ := exampleDataset(t)

	w := ts.do(t, nethttp.MethodPost, "/v1/commit", jsonBody{"row_hashes": rows})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var resp commitBody
	decodeBody(t, w, &resp)
	require.Equal(t, root, resp.Root)
	require.Equal(t, 4, resp.N)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCommit_Malformed(t *testing.T) {
	ts := newTestServer(t)

	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/commit", "{not json"), nethttp.StatusBadRequest, "malformed_input")
	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/commit", `{"row_hashes":["0x12"]}`), nethttp.StatusBadRequest, "malformed_input")
	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/commit", jsonBody{"row_hashes": []types.RowHash{}}), nethttp.StatusBadRequest, "malformed_input")
	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/commit", jsonBody{"row_hashes": dataset.ExampleRows(17)}), nethttp.StatusBadRequest, "malformed_input")
}

func TestPermutation(t *testing.T) {
	ts := newTestServer(t)
	seed := testutil.NewTestSeed(0x42)

	w := ts.do(t, nethttp.MethodGet, "/v1/permutation?n=4&seed="+seed.Hex(), nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Permutation  []uint32 `json:"permutation"`
		K            int      `json:"k"`
		TrainIndices []uint32 `json:"train_indices"`
		TestIndices  []uint32 `json:"test_indices"`
	}
	decodeBody(t, w, &resp)

	perm, err := shuffle.Permute(seed, 4)
	require.NoError(t, err)
	require.Equal(t, []uint32(perm), resp.Permutation)
	require.Equal(t, 3, resp.K)
	require.Equal(t, resp.Permutation[:3], resp.TrainIndices)
	require.Len(t, resp.TestIndices, 1)

	// 显式比例
	w = ts.do(t, nethttp.MethodGet, "/v1/permutation?n=4&ratio=50/50&seed="+seed.Hex(), nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	require.Equal(t, 2, resp.K)
}

func TestPermutation_BadParams(t *testing.T) {
	ts := newTestServer(t)
	seed := testutil.NewTestSeed(1).Hex()

	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/permutation?n=4&seed=zz", nil), nethttp.StatusBadRequest, "malformed_input")
	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/permutation?n=x&seed="+seed, nil), nethttp.StatusBadRequest, "malformed_input")
	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/permutation?n=0&seed="+seed, nil), nethttp.StatusBadRequest, "malformed_input")
	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/permutation?n=4&ratio=0/1&seed="+seed, nil), nethttp.StatusBadRequest, "malformed_input")
}

// ============================================================================
// 证明与验证
// ============================================================================

func TestProveWaitAndVerify(t *testing.T) {
	ts := newTestServer(t)
	rows, root, seed := exampleDataset(t)

	w := ts.do(t, nethttp.MethodPost, "/v1/proofs", jsonBody{
		"row_hashes": rows, "seed": seed, "original_root": root, "wait": true,
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var res splitproof.ProofResult
	decodeBody(t, w, &res)
	require.Len(t, res.TrainIndices, 3)

	w = ts.do(t, nethttp.MethodPost, "/v1/verify", jsonBody{
		"proof": res.Proof, "original_root": root, "seed": seed, "public_outputs": res.PublicOutputs,
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"valid":true}`, w.Body.String())

	w = ts.do(t, nethttp.MethodPost, "/v1/verify", jsonBody{
		"proof": res.Proof, "original_root": root, "seed": seed, "train_root": res.TrainRoot, "test_root": res.TestRoot,
	})
	require.JSONEq(t, `{"valid":true}`, w.Body.String())

	// 交换训练下标
	tampered := res.Outputs()
	tampered.TrainIndices[0], tampered.TrainIndices[1] = tampered.TrainIndices[1], tampered.TrainIndices[0]
	w = ts.do(t, nethttp.MethodPost, "/v1/verify", jsonBody{
		"proof": res.Proof, "original_root": root, "seed": seed, "public_outputs": hexutil.Bytes(tampered.Marshal()),
	})
	require.JSONEq(t, `{"valid":false}`, w.Body.String())

	// 缺少待验证的输出
	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/verify", jsonBody{
		"proof": res.Proof, "original_root": root, "seed": seed,
	}), nethttp.StatusBadRequest, "malformed_input")

	// 截断的证明
	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/verify", jsonBody{
		"proof": res.Proof[:10], "original_root": root, "seed": seed, "public_outputs": res.PublicOutputs,
	}), nethttp.StatusBadRequest, "malformed_proof")
}

func TestProve_RootMismatch(t *testing.T) {
	ts := newTestServer(t)
	rows, root, seed := exampleDataset(t)
	rows[1][5] ^= 0xff

	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/proofs", jsonBody{
		"row_hashes": rows, "seed": seed, "original_root": root, "wait": true,
	}), nethttp.StatusUnprocessableEntity, "witness_inconsistency")
}

func TestSubmitAsyncAndPayload(t *testing.T) {
	ts := newTestServer(t)
	rows, root, seed := exampleDataset(t)

	w := ts.do(t, nethttp.MethodPost, "/v1/proofs", jsonBody{
		"row_hashes": rows, "seed": seed, "original_root": root,
	})
	require.Equal(t, nethttp.StatusAccepted, w.Code, w.Body.String())
	var sub struct {
		JobID string `json:"job_id"`
	}
	decodeBody(t, w, &sub)
	require.NotEmpty(t, sub.JobID)
	require.Equal(t, "/v1/proofs/"+sub.JobID, w.Header().Get("Location"))

	_, err := ts.manager.Wait(context.Background(), sub.JobID)
	require.NoError(t, err)

	w = ts.do(t, nethttp.MethodGet, "/v1/proofs/"+sub.JobID, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	var rec splitproof.JobRecord
	decodeBody(t, w, &rec)
	require.Equal(t, splitproof.TaskStatusCompleted, rec.Status)
	require.NotNil(t, rec.Result)

	w = ts.do(t, nethttp.MethodGet, "/v1/proofs/"+sub.JobID+"/payload", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var payload struct {
		Payload  hexutil.Bytes `json:"payload"`
		Digest   string        `json:"digest"`
		Calldata hexutil.Bytes `json:"solidity_proof"`
	}
	decodeBody(t, w, &payload)
	require.NotEmpty(t, payload.Payload)
	require.True(t, strings.HasPrefix(payload.Digest, "0x"))
	require.NotEmpty(t, payload.Calldata)
}

func TestCancelFinishedJob(t *testing.T) {
	ts := newTestServer(t)
	rows, root, seed := exampleDataset(t)

	w := ts.do(t, nethttp.MethodPost, "/v1/proofs", jsonBody{
		"row_hashes": rows, "seed": seed, "original_root": root,
	})
	require.Equal(t, nethttp.StatusAccepted, w.Code, w.Body.String())
	var sub struct {
		JobID string `json:"job_id"`
	}
	decodeBody(t, w, &sub)
	_, err := ts.manager.Wait(context.Background(), sub.JobID)
	require.NoError(t, err)

	// 已结束的任务不受取消影响
	w = ts.do(t, nethttp.MethodDelete, "/v1/proofs/"+sub.JobID, nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var rec splitproof.JobRecord
	decodeBody(t, w, &rec)
	require.Equal(t, splitproof.TaskStatusCompleted, rec.Status)
}

func TestJobNotFound(t *testing.T) {
	ts := newTestServer(t)
	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/proofs/nope", nil), nethttp.StatusNotFound, apitypes.CodeNotFound)
	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/proofs/nope/payload", nil), nethttp.StatusNotFound, apitypes.CodeNotFound)
	requireProblem(t, ts.do(t, nethttp.MethodDelete, "/v1/proofs/nope", nil), nethttp.StatusNotFound, apitypes.CodeNotFound)
}

// ============================================================================
// 悬赏
// ============================================================================

func TestBountyFlow(t *testing.T) {
	ts := newTestServer(t)
	rows, root, seed := exampleDataset(t)

	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/bounties", jsonBody{
		"amount": 10, "seed": seed, "original_root": root, "ratio": "75/25", "deadline": time.Now().Add(-time.Hour),
	}), nethttp.StatusBadRequest, apitypes.CodeInvalidBountyTerm)

	w := ts.do(t, nethttp.MethodPost, "/v1/bounties", jsonBody{
		"creator": "alice", "amount": 10, "seed": seed, "original_root": root, "ratio": "75/25",
		"deadline": time.Now().Add(time.Hour),
	})
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	var b types.Bounty
	decodeBody(t, w, &b)

	w = ts.do(t, nethttp.MethodGet, "/v1/bounties/"+b.ID, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	requireProblem(t, ts.do(t, nethttp.MethodGet, "/v1/bounties/missing", nil), nethttp.StatusNotFound, apitypes.CodeNotFound)

	res, err := ts.manager.Prove(context.Background(), rows, seed, root)
	require.NoError(t, err)

	body := jsonBody{"verifier": "bob", "proof": res.Proof, "public_outputs": res.PublicOutputs}
	w = ts.do(t, nethttp.MethodPost, "/v1/bounties/"+b.ID+"/verify", body)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &b)
	require.True(t, b.IsVerified)
	require.Equal(t, res.TestRoot, *b.TestsetCommitment)

	requireProblem(t, ts.do(t, nethttp.MethodPost, "/v1/bounties/"+b.ID+"/verify", body), nethttp.StatusConflict, apitypes.CodeAlreadyVerified)

	w = ts.do(t, nethttp.MethodGet, "/v1/bounties", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
}

// ============================================================================
// 运维端点
// ============================================================================

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, nethttp.MethodGet, "/healthz", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	var health struct {
		Status string `json:"status"`
		Scheme string `json:"scheme"`
	}
	decodeBody(t, w, &health)
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, splitproof.SchemeGroth16, health.Scheme)

	w = ts.do(t, nethttp.MethodGet, "/metrics", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `splitproof_api_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestServerStartStop(t *testing.T) {
	opts := apiconfig.New(nil).GetOptions()
	opts.HTTP.Host = "127.0.0.1"
	opts.HTTP.Port = 0
	s := NewServer(testutil.NewTestLogger(), opts, &stubProofs{}, nil, nil)
	require.NoError(t, s.Start())

	resp, err := nethttp.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}

type jsonBody = map[string]interface{}

type commitBody struct {
	Root types.MerkleRoot `json:"root"`
	N    int              `json:"n"`
}
