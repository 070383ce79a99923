package render

import (
	"fmt"
	"os"
	"path/filepath"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

// 文档注释：将文档写入目标路径并覆盖旧内容
// 背景：先写入同目录临时文件再原子重命名，编码或写入失败时旧文件保持不变、不留下半成品。
// 异常：目录不存在、写入或重命名失败均返回错误。
func WriteFile(path string, t *jurisdiction.Tree, f Format) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, t, f); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	logger.L().Debug("output_written", "path", path, "format", string(f), "countries", len(t.Countries()))
	return nil
}

// ReadFile：读取已构建文档；格式为空时按扩展名推断（.yaml/.yml 为 YAML，否则 JSON）
func ReadFile(path string, f Format) (*jurisdiction.Tree, error) {
	if f == "" {
		f = FormatForPath(path)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh, f)
}

// FormatForPath：按扩展名推断格式
func FormatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}
