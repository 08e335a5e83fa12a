package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xrefresh/internal/fetch"
	"github.com/omeyang/xrefresh/pkg/config/xconf"
	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/storage/xrefresh"
)

const (
	defaultInterval    = time.Minute
	defaultPoll        = 10 * time.Second
	defaultProfileName = "default"
	profilesKey        = "profiles"
)

// usageError 表示参数错误，对应退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createWatchCommand(),
		createGetCommand(),
		createProfilesCommand(),
	}
}

// cacheFlags 是 watch 和 get 共用的缓存参数。
func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "profile 配置文件（YAML/JSON），设置后忽略其余缓存参数",
		},
		&cli.StringFlag{
			Name:  "profile-name",
			Usage: "使用配置文件中的哪个 profile",
			Value: defaultProfileName,
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "基础刷新间隔",
			Value: defaultInterval,
		},
		&cli.StringFlag{
			Name:  "backoff",
			Usage: "刷新间隔增长策略 (additive/constant)",
			Value: xrefresh.BackoffAdditive,
		},
		&cli.DurationFlag{
			Name:  "max-interval",
			Usage: "刷新间隔上限，0 表示不限制",
		},
		&cli.StringFlag{
			Name:  "idle",
			Usage: "空闲淘汰时间，infinite 表示永不淘汰，为空时取 10 倍基础间隔",
		},
		&cli.DurationFlag{
			Name:  "load-timeout",
			Usage: "单次拉取超时",
			Value: fetch.DefaultRequestTimeout,
		},
		&cli.UintFlag{
			Name:  "retry",
			Usage: "单次拉取内的尝试次数（含第一次）",
			Value: 1,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "两次尝试之间的等待",
			Value: time.Second,
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "请求使用的 User-Agent",
			Value: fetch.DefaultUserAgent,
		},
	}
}

func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "按缓存的刷新节奏拉取 URL，定期打印状态",
		ArgsUsage: "<url>...",
		Flags: append(cacheFlags(),
			&cli.DurationFlag{
				Name:  "poll",
				Usage: "打印状态的周期（每次打印都算作一次访问）",
				Value: defaultPoll,
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "打印多少轮后退出，0 表示直到收到信号",
			},
		),
		Action: cmdWatch,
	}
}

func createGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "经缓存拉取一次 URL 并输出内容",
		ArgsUsage: "<url>",
		Flags:     cacheFlags(),
		Action:    cmdGet,
	}
}

func createProfilesCommand() *cli.Command {
	return &cli.Command{
		Name:      "profiles",
		Usage:     "校验并列出配置文件中的缓存 profile",
		ArgsUsage: "<file>",
		Action:    cmdProfiles,
	}
}

func cmdWatch(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return usagef("watch 需要至少一个 URL")
	}
	poll := cmd.Duration("poll")
	if poll <= 0 {
		return usagef("--poll 必须为正数")
	}
	count := cmd.Int("count")
	if count < 0 {
		return usagef("--count 不能为负数")
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	return watch(ctx, env.cache, urls, poll, count, cmd.Root().Writer, env.logger)
}

func cmdGet(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return usagef("get 需要一个 URL")
	}
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	doc, err := env.cache.Get(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	_, err = cmd.Root().Writer.Write(doc.Body)
	return err
}

func cmdProfiles(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return usagef("profiles 需要一个配置文件路径")
	}
	profiles, err := loadProfiles(cmd.Args().First())
	if err != nil {
		return err
	}
	return printProfiles(cmd.Root().Writer, profiles)
}

// environment 汇总一次命令运行所需的资源。
type environment struct {
	logger  xlog.Logger
	cache   *xrefresh.Cache[string, *fetch.Document]
	cleanup func() error
}

func (e *environment) close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	if e.cleanup != nil {
		_ = e.cleanup()
	}
}

func setup(cmd *cli.Command) (*environment, error) {
	profile, err := resolveProfile(cmd)
	if err != nil {
		return nil, err
	}

	logger, cleanup, err := buildLogger(cmd)
	if err != nil {
		return nil, usagef("%v", err)
	}
	env := &environment{logger: logger, cleanup: cleanup}

	client := fetch.New(
		fetch.WithUserAgent(cmd.String("user-agent")),
		fetch.WithLogger(logger),
	)
	cache, err := xrefresh.NewFromProfile(client.Producer(), profile,
		xrefresh.WithLogger(logger),
		xrefresh.WithName(cmd.Name),
		xrefresh.WithRetry(cmd.Uint("retry"), cmd.Duration("retry-delay")),
	)
	if err != nil {
		env.close()
		return nil, usagef("%v", err)
	}
	env.cache = cache
	return env, nil
}

func buildLogger(cmd *cli.Command) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format"))
	if file := cmd.String("log-file"); file != "" {
		b = b.SetRotation(file)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, cleanup, nil
}

// resolveProfile 从 --profile 文件或命令行参数得到缓存 profile。
func resolveProfile(cmd *cli.Command) (xrefresh.Profile, error) {
	path := cmd.String("profile")
	if path == "" {
		return xrefresh.Profile{
			Interval:     cmd.Duration("interval"),
			Backoff:      cmd.String("backoff"),
			MaxInterval:  cmd.Duration("max-interval"),
			IdleLifetime: cmd.String("idle"),
			LoadTimeout:  cmd.Duration("load-timeout"),
		}, nil
	}

	profiles, err := loadProfiles(path)
	if err != nil {
		return xrefresh.Profile{}, err
	}
	name := cmd.String("profile-name")
	p, ok := profiles[name]
	if !ok {
		return xrefresh.Profile{}, usagef("配置文件 %s 中没有 profile %q", path, name)
	}
	return p, nil
}

func loadProfiles(path string) (map[string]xrefresh.Profile, error) {
	cfg, err := xconf.New(path)
	if err != nil {
		if errors.Is(err, xconf.ErrUnsupportedFormat) || errors.Is(err, os.ErrNotExist) {
			return nil, usagef("%v", err)
		}
		return nil, err
	}
	var profiles map[string]xrefresh.Profile
	if err := cfg.Unmarshal(profilesKey, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, usagef("配置文件 %s 中没有 %s", path, profilesKey)
	}
	return profiles, nil
}

func printProfiles(w io.Writer, profiles map[string]xrefresh.Profile) error {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)

	tw := newTable(w, "NAME", "INTERVAL", "BACKOFF", "MAX", "IDLE")
	var errs []error
	for _, name := range names {
		p := profiles[name]
		if _, _, err := p.Options(); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", name, err))
			continue
		}
		tw.row(name, p.Interval.String(), orDefault(p.Backoff, xrefresh.BackoffAdditive),
			durationOrDash(p.MaxInterval), orDefault(p.IdleLifetime, "default"))
	}
	if err := tw.flush(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func durationOrDash(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.String()
}
