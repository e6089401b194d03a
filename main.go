package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/km-arc/go-mvc/app"
	kernel "github.com/km-arc/go-mvc/framework/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := app.NewMemoryUsers(
		app.User{ID: 1, Name: "Alice"},
		app.User{ID: 2, Name: "Bob"},
	)

	application, err := kernel.WithProviders(app.Providers(users)...) // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
