package main

import (
  "fmt"
  "os"
  "github.com/yungbote/storefront-backend/internal/app"
)

func main() {
  application, err := app.New()
  if err != nil {
    fmt.Printf("Failed to init app: %v\n", err)
    os.Exit(1)
  }
  defer application.Close()

  application.Start()

  addr := ":" + application.Cfg.Port
  application.Log.Info("Starting server...", "addr", addr)
  if err := application.Run(addr); err != nil {
    application.Log.Error("Server exited", "error", err)
    os.Exit(1)
  }
}
