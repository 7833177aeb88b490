package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/anyproto/anytype-push-messaging/config"
	"github.com/anyproto/anytype-push-messaging/credential"
	"github.com/anyproto/anytype-push-messaging/domain"
	"github.com/anyproto/anytype-push-messaging/httpclient"
	"github.com/anyproto/anytype-push-messaging/messaging"
)

var log = logger.NewNamed("main")

var flagConfigFile = flag.String("c", "etc/fcmctl.yml", "path to config file")

const usage = `usage: fcmctl [-c config] <command> [flags]

commands:
  send         -m message.yml [-dry-run]
  subscribe    -topic name -tokens a,b
  unsubscribe  -topic name -tokens a,b
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	conf, err := config.NewFromFile(*flagConfigFile)
	if err != nil {
		log.Error("can't open config file", zap.Error(err))
		os.Exit(1)
	}
	conf.Log.ApplyGlobal()

	os.Exit(execute(context.Background(), conf, credential.New(), flag.Args()))
}

// execute starts the components, runs the command and returns the process exit code.
func execute(ctx context.Context, conf *config.Config, cred credential.Credential, args []string) int {
	a := new(app.App)
	a.Register(conf).
		Register(cred).
		Register(httpclient.New()).
		Register(messaging.New())
	if err := a.Start(ctx); err != nil {
		log.Error("can't start app", zap.Error(err))
		return exitCode(err)
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			log.Warn("close error", zap.Error(err))
		}
	}()

	m := a.MustComponent(messaging.CName).(messaging.Messaging)
	if err := run(ctx, m, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return 0
}

func run(ctx context.Context, m messaging.Messaging, cmd string, args []string) error {
	switch cmd {
	case "send":
		return send(ctx, m, args)
	case "subscribe":
		return manageTopic(ctx, args, m.SubscribeToTopic)
	case "unsubscribe":
		return manageTopic(ctx, args, m.UnsubscribeFromTopic)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func send(ctx context.Context, m messaging.Messaging, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	file := fs.String("m", "", "path to yaml message file")
	dryRun := fs.Bool("dry-run", false, "validate the message without delivering it")
	_ = fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("message file is required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var msg domain.Message
	if err = yaml.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	id, err := m.Send(ctx, &msg, *dryRun)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

type topicOperation func(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)

func manageTopic(ctx context.Context, args []string, op topicOperation) error {
	fs := flag.NewFlagSet("topic", flag.ExitOnError)
	topic := fs.String("topic", "", "topic name, with or without the /topics/ prefix")
	tokens := fs.String("tokens", "", "comma separated registration tokens")
	_ = fs.Parse(args)
	var list []string
	if *tokens != "" {
		list = strings.Split(*tokens, ",")
	}
	resp, err := op(ctx, list, *topic)
	if err != nil {
		return err
	}
	fmt.Printf("success: %d, failure: %d\n", resp.SuccessCount(), resp.FailureCount())
	for _, e := range resp.Errors() {
		fmt.Printf("  %d: %s\n", e.Index, e.Reason)
	}
	return nil
}

func exitCode(err error) int {
	switch {
	case domain.IsInvalidArgument(err):
		return 2
	case domain.IsConfiguration(err):
		return 3
	default:
		return 1
	}
}
