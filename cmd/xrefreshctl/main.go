// xrefreshctl 通过 xrefresh 缓存持续观察远端文档。
//
// 用法:
//
//	xrefreshctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	--log-level    日志级别 (debug/info/warn/error，默认 info)
//	--log-format   日志格式 (text/json，默认 text)
//	--log-file     日志文件路径，设置后按大小轮转
//
// 命令:
//
//	watch <url>...       按缓存的刷新节奏拉取 URL，定期打印状态
//	get <url>            经缓存拉取一次并输出内容
//	profiles <file>      校验并列出配置文件中的缓存 profile
//
// 配置文件格式（YAML 或 JSON）:
//
//	profiles:
//	  default:
//	    interval: 1m
//	    backoff: additive
//	    max_interval: 30m
//	    idle_lifetime: 10m
//	  global:
//	    interval: 1m
//	    backoff: constant
//	    idle_lifetime: infinite
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误
//
// 示例:
//
//	xrefreshctl watch https://example.com/schedule.json
//	xrefreshctl watch --interval 4m --backoff constant --idle infinite https://example.com/a
//	xrefreshctl watch --profile caches.yaml --profile-name global https://example.com/a
//	xrefreshctl profiles caches.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags "-X main.Version=..." 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xrefreshctl",
		Usage:     "通过自刷新缓存观察远端文档",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径，为空时输出到 stderr",
			},
		},
		Commands: createCommands(),
		// 禁止 urfave/cli 直接调用 os.Exit，由 run 统一映射退出码
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				_, _ = fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			_, _ = fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return 2
		}
		_, _ = fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
