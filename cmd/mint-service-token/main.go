// mint-service-token prints a signed bearer token for calling the protected
// API routes when REQUIRE_SERVICE_AUTH is enabled.
//
// Usage:
//
//	API_SECRET=... go run ./cmd/mint-service-token -subject oms-webhook -role service
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/adsync_backend/utils"
)

func main() {
	subject := flag.String("subject", "oms-webhook", "token subject")
	role := flag.String("role", "service", "token role")
	flag.Parse()

	token, err := utils.JwtGenerate(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
