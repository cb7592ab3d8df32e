package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/babelchat/babel-client/internal/api"
	"github.com/babelchat/babel-client/internal/config"
	"github.com/babelchat/babel-client/internal/engine"
	"github.com/babelchat/babel-client/internal/logging"
	"github.com/babelchat/babel-client/internal/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		token   string
		email   string
	)

	cmd := &cobra.Command{
		Use:          "babel-client",
		Short:        "Terminal client for the Babel chat service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgFile, token, email)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.Flags().StringVar(&token, "token", "", "bearer token for the session")
	cmd.Flags().StringVar(&email, "email", "", "email of the logged-in user")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func run(ctx context.Context, cfgFile, token, email string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	stores := state.NewStores()
	sess := engine.NewSession(engine.Config{
		SocketURL: cfg.Channel.URL,
		Token:     token,
		UserEmail: email,
		PageSize:  cfg.Chat.PageSize,
	}, api.New(cfg.API.BaseURL, token), stores)
	defer sess.Close()

	if err := sess.Bootstrap(ctx); err != nil {
		return err
	}
	if err := sess.Connect(ctx); err != nil {
		return err
	}

	stores.Notices.Subscribe(func(n state.Notice) {
		if n.Visible {
			fmt.Printf("*** %s\n", n.Text)
		}
	})
	stores.Timeline.Subscribe(func(msgs []state.Message) {
		if len(msgs) == 0 {
			return
		}
		last := msgs[len(msgs)-1]
		name := "me"
		if last.SenderName != nil {
			name = *last.SenderName
		}
		fmt.Printf("[%s]: %s\n", name, last.OriginalText)
	})

	printConversations(stores)
	fmt.Println("Commands: /list, /open <id>, /more, /quit. Anything else is sent to the open conversation.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
			continue
		case text == "/quit":
			return nil
		case text == "/list":
			printConversations(stores)
		case text == "/more":
			if err := sess.LoadOlder(ctx); err != nil {
				fmt.Printf("load failed: %v\n", err)
			}
		case strings.HasPrefix(text, "/open "):
			id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(text, "/open ")))
			if err != nil {
				fmt.Println("usage: /open <conversation id>")
				continue
			}
			if err := sess.Select(ctx, id); err != nil {
				fmt.Printf("open failed: %v\n", err)
			}
		default:
			if err := sess.Send(text); err != nil {
				fmt.Printf("send failed: %v\n", err)
			}
		}
	}
	return scanner.Err()
}

func printConversations(stores *state.Stores) {
	previews := stores.Previews.Snapshot()
	for _, c := range stores.Conversations.Snapshot() {
		marker := " "
		line := ""
		if pv, ok := previews[c.ID]; ok {
			if !pv.Read {
				marker = "*"
			}
			line = fmt.Sprintf(" — %s (%s)", pv.Text, pv.TimeLabel)
		}
		fmt.Printf("%s [%d] %s%s\n", marker, c.ID, c.Name, line)
	}
}
