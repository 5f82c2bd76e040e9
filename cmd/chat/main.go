package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tutorgate/internal/client"
	"tutorgate/internal/config"
	"tutorgate/internal/domain"
	"tutorgate/internal/query"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	gatewayURL := os.Getenv("GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:" + cfg.HTTPPort
	}

	tokens := client.NewFileTokenStore(client.DefaultTokenPath())
	sessions := client.NewSessionClient(gatewayURL, tokens, logger, nil)

	user, err := ensureSignedIn(ctx, reader, sessions)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Signed in as %s\n", user.Email)

	// La capacidad de consulta se elige una vez al arrancar: si el gateway
	// no responde, toda la sesion corre con la variante degradada.
	var querier query.Service
	live := query.NewAuthClient(gatewayURL, cfg.ProxyPrefix, "/health", nil, sessions.Token)
	ctxHealth, cancel := context.WithTimeout(ctx, 2*time.Second)
	if live.Healthy(ctxHealth) {
		querier = live
	} else {
		fmt.Println("warning: gateway unreachable, answers will be canned")
		querier = query.NewUnavailable("gateway unreachable")
	}
	cancel()

	chat := client.NewChatSession(querier, logger)
	fmt.Println("Type your question, or /quit to exit, /logout to sign out.")

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/logout":
			sessions.SignOut(ctx)
			fmt.Println("Signed out.")
			return
		}

		chat.Send(ctx, line)
		if last, ok := chat.Last(); ok && last.Sender == domain.RoleAssistant {
			fmt.Printf("assistant: %s\n", last.Text)
		}
	}
}

// ensureSignedIn reutiliza la sesion persistida o pide credenciales.
func ensureSignedIn(ctx context.Context, reader *bufio.Reader, sessions *client.SessionClient) (domain.User, error) {
	if user, _ := sessions.GetSession(ctx); user != nil {
		return *user, nil
	}

	for {
		fmt.Print("email: ")
		email, err := reader.ReadString('\n')
		if err != nil {
			return domain.User{}, err
		}
		fmt.Print("password: ")
		password, err := reader.ReadString('\n')
		if err != nil {
			return domain.User{}, err
		}
		email = strings.TrimSpace(email)
		password = strings.TrimSpace(password)

		user, err := sessions.SignIn(ctx, email, password)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, client.ErrAuthRejected) {
			return domain.User{}, err
		}

		fmt.Print("sign-in rejected; create an account? [y/N] ")
		choice, err := reader.ReadString('\n')
		if err != nil {
			return domain.User{}, err
		}
		if !strings.EqualFold(strings.TrimSpace(choice), "y") {
			continue
		}
		fmt.Print("display name: ")
		name, err := reader.ReadString('\n')
		if err != nil {
			return domain.User{}, err
		}
		user, err = sessions.SignUp(ctx, email, password, strings.TrimSpace(name))
		if err == nil {
			return user, nil
		}
		fmt.Printf("sign-up failed: %v\n", err)
	}
}
