package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Abraxas-365/nimbus/cmd/internal/appcontainer"
	"github.com/Abraxas-365/nimbus/pkg/config"
	"github.com/Abraxas-365/nimbus/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

func main() {
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	container, err := appcontainer.New(context.Background(), cfg)
	if err != nil {
		logx.Fatalf("Failed to initialize container: %v", err)
	}

	h := &handler{
		router:   container.IAM.Router,
		resource: cfg.Lambda.Resource,
		pool:     iamcontainer.PoolParams(cfg),
		origins:  cfg.Server.CORSOrigins,
	}

	logx.Infof("🚀 Lambda handler ready (default resource: %q)", h.resource)
	lambda.Start(h.Invoke)
}
