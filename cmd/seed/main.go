// Command seed populates a running ledger server with demo users, deposits
// and transfers through the public HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/harborbank/core/internal/config"
	"github.com/harborbank/core/internal/domain"
	"github.com/harborbank/core/internal/logging"
)

type seededUser struct {
	Token     string
	AccountID string
}

type sessionPayload struct {
	Token   string `json:"token"`
	Account *struct {
		ID string `json:"id"`
	} `json:"account"`
}

func main() {
	var (
		baseURL   = flag.String("base-url", "http://localhost:8080", "ledger server base URL")
		userCount = flag.Int("users", 10, "number of demo users to register")
		transfers = flag.Int("transfers", 50, "number of random transfers to perform")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		workers   = flag.Int("workers", 4, "number of concurrent transfer workers")
	)
	flag.Parse()

	logger := logging.New(config.LoggingConfig{Level: "info", Format: "text"})
	rng := rand.New(rand.NewSource(*seed))
	client := &http.Client{Timeout: 10 * time.Second}

	users := make([]seededUser, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		email := fmt.Sprintf("demo%03d@example.com", i)
		var session sessionPayload
		err := post(client, *baseURL+"/auth/register", "", map[string]string{
			"name":     fmt.Sprintf("Demo User %d", i),
			"email":    email,
			"password": "demo-password",
		}, &session)
		if err != nil {
			logger.Error("registration failed", "email", email, "error", err)
			os.Exit(1)
		}
		if session.Account == nil {
			logger.Error("registration returned no account", "email", email)
			os.Exit(1)
		}

		// Give every account an opening balance so transfers can succeed.
		opening := domain.Amount(10000 + rng.Int63n(490000)) // 100.00 .. 5000.00
		err = post(client, *baseURL+"/transactions/deposit", session.Token, map[string]string{
			"accountId":   session.Account.ID,
			"amount":      opening.String(),
			"description": "Opening balance",
		}, nil)
		if err != nil {
			logger.Error("opening deposit failed", "email", email, "error", err)
			os.Exit(1)
		}

		users = append(users, seededUser{Token: session.Token, AccountID: session.Account.ID})
	}
	logger.Info("registered demo users", "count", len(users))

	if len(users) < 2 || *transfers <= 0 {
		return
	}

	type job struct {
		from seededUser
		to   seededUser
		amt  domain.Amount
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				err := post(client, *baseURL+"/transactions/transfer", j.from.Token, map[string]string{
					"fromAccountId": j.from.AccountID,
					"toAccountId":   j.to.AccountID,
					"amount":        j.amt.String(),
					"description":   "Demo transfer",
				}, nil)
				if err != nil {
					// Insufficient funds is expected noise in random traffic.
					logger.Debug("transfer skipped", "error", err)
				}
			}
		}()
	}

	for i := 0; i < *transfers; i++ {
		fromIdx := rng.Intn(len(users))
		toIdx := rng.Intn(len(users) - 1)
		if toIdx >= fromIdx {
			toIdx++
		}
		jobs <- job{
			from: users[fromIdx],
			to:   users[toIdx],
			amt:  domain.Amount(100 + rng.Int63n(10000)), // 1.00 .. 101.00
		}
	}
	close(jobs)
	wg.Wait()

	logger.Info("seeding complete", "users", len(users), "transfers", *transfers)
}

func post(client *http.Client, url, token string, body map[string]string, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return fmt.Errorf("%s: %s (%s)", url, resp.Status, payload.Error)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
