package erpnext

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"erpnext",
		fx.Provide(NewClient),
	)
}
