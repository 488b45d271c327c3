package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/usuarios/internal/apiclient"
	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/tokenstore"
	"github.com/hitoshi/usuarios/internal/view"
)

// Clients はひとつのトークンスロットに束縛されたバックエンドクライアント群。
type Clients struct {
	Auth      view.AuthService
	Directory view.DirectoryService
	Photos    view.PhotoService
	Accounts  view.AccountService
}

// ClientFactory はトークンスロットからClientsを生成する。
type ClientFactory func(store tokenstore.Store) Clients

// NewBackendClients はバックエンドAPIのクライアントを生成するClientFactoryを返す。
// Transportは全リクエストで共有する。
func NewBackendClients(transport *apiclient.Transport) ClientFactory {
	return func(store tokenstore.Store) Clients {
		directory := apiclient.NewDirectoryClient(transport, store)
		return Clients{
			Auth:      apiclient.NewAuthClient(transport, store),
			Directory: directory,
			Photos:    directory,
			Accounts:  directory,
		}
	}
}

// viewDeps は各ハンドラーが画面コンポーネントを組み立てるための共通依存。
type viewDeps struct {
	storeFor middleware.StoreResolver
	clients  ClientFactory
	logger   *slog.Logger
}

func newViewDeps(storeFor middleware.StoreResolver, clients ClientFactory, log *slog.Logger) viewDeps {
	if log == nil {
		log = slog.Default()
	}
	return viewDeps{storeFor: storeFor, clients: clients, logger: log}
}

// begin はリクエストの生存期間に紐づくEnvと、結果を記録するOutcomeを返す。
// クライアントが切断した場合はLifetimeが破棄扱いになり、遅れて届いた結果は捨てられる。
func (d viewDeps) begin(r *http.Request) (view.Env, *view.Outcome, Clients) {
	out := &view.Outcome{}
	env := view.Env{
		Lifetime:  view.NewLifetime(r.Context()),
		Notifier:  out,
		Navigator: out,
		Logger:    d.logger,
	}
	return env, out, d.clients(d.storeFor(r))
}

// gone はクライアントが切断済みかどうかを返す。切断済みなら応答を書かない。
func gone(r *http.Request) bool {
	return r.Context().Err() != nil
}
