// Package ui 命令行输出：表格/分区等人读格式，或供脚本使用的 JSON
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// Format 输出格式
type Format string

const (
	// FormatTable 人读格式（pterm 表格）
	FormatTable Format = "table"
	// FormatJSON 机器可读 JSON
	FormatJSON Format = "json"
)

// ParseFormat 解析输出格式
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("未知输出格式 %q（可选 table|json）", s)
	}
}

// Printer 命令输出器
//
// 结果写入 out；提示、进度与错误写入 errOut，保证 JSON 输出可被管道消费
type Printer struct {
	out    io.Writer
	errOut io.Writer
	format Format
}

// NewPrinter 创建输出器
func NewPrinter(out, errOut io.Writer, format Format) *Printer {
	return &Printer{out: out, errOut: errOut, format: format}
}

// Format 当前输出格式
func (p *Printer) Format() Format { return p.format }

// Out 结果输出流
func (p *Printer) Out() io.Writer { return p.out }

// Result 输出结果：JSON 模式直接编码 v，表格模式渲染 rows（键值两列）
func (p *Printer) Result(title string, v interface{}, rows [][]string) error {
	if p.format == FormatJSON {
		return p.JSON(v)
	}
	p.Section(title)
	return p.KeyValues(rows)
}

// JSON 以缩进 JSON 输出
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Section 分区标题
func (p *Printer) Section(title string) {
	if title == "" {
		return
	}
	pterm.DefaultSection.WithWriter(p.out).Println(title)
}

// KeyValues 无表头两列表格
func (p *Printer) KeyValues(rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return p.render(pterm.DefaultTable.WithHasHeader(false).WithData(rows))
}

// Table 带表头表格
func (p *Printer) Table(headers []string, data [][]string) error {
	all := append([][]string{headers}, data...)
	return p.render(pterm.DefaultTable.WithHasHeader(true).WithData(all))
}

func (p *Printer) render(t *pterm.TablePrinter) error {
	s, err := t.Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.out, s)
	return err
}

// Success 成功提示
func (p *Printer) Success(format string, args ...interface{}) {
	pterm.Success.WithWriter(p.errOut).Printfln(format, args...)
}

// Info 信息提示
func (p *Printer) Info(format string, args ...interface{}) {
	pterm.Info.WithWriter(p.errOut).Printfln(format, args...)
}

// Warning 警告提示
func (p *Printer) Warning(format string, args ...interface{}) {
	pterm.Warning.WithWriter(p.errOut).Printfln(format, args...)
}

// Error 错误提示
func (p *Printer) Error(err error) {
	pterm.Error.WithWriter(p.errOut).Println(err.Error())
}

// Spinner 长耗时操作的进度动画，返回的 stop 函数以成功/失败文案结束动画
func (p *Printer) Spinner(text string) (stop func(err error, done string)) {
	sp, err := pterm.DefaultSpinner.WithWriter(p.errOut).WithRemoveWhenDone(false).Start(text)
	if err != nil {
		return func(error, string) {}
	}
	return func(err error, done string) {
		if err != nil {
			sp.Fail(err.Error())
			return
		}
		sp.Success(done)
	}
}

// Truncate 截断长十六进制串用于表格展示
func Truncate(s string, limit int) string {
	if len(s) <= limit || limit < 8 {
		return s
	}
	half := (limit - 3) / 2
	return s[:half] + "..." + s[len(s)-half:]
}

// JoinIndices 索引列表展示
func JoinIndices(indices []uint32) string {
	parts := make([]string, len(indices))
	for i, v := range indices {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
