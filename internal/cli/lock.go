package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

const lockFileName = "worklog.lock"

// CheckAndAcquireLock 检查并获取进程锁
// runDir: 运行时目录，锁文件保存在其中
func CheckAndAcquireLock(runDir string, logger *zap.SugaredLogger) error {
	lockFile := filepath.Join(runDir, lockFileName)

	// 读取现有锁文件
	if data, err := os.ReadFile(lockFile); err == nil {
		oldPID := strings.TrimSpace(string(data))

		// 检查进程是否还在运行
		if oldPID != strconv.Itoa(os.Getpid()) && isProcessRunning(oldPID) {
			return fmt.Errorf("服务已在运行 (PID: %s, 锁文件: %s)", oldPID, lockFile)
		}

		// 进程已结束，删除旧锁文件
		logger.Infow("Cleaning up stale lock file", "pid", oldPID)
		os.Remove(lockFile)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(lockFile, []byte(pid), 0644); err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	logger.Infow("Process lock acquired", "pid", pid, "lock_file", lockFile)
	return nil
}

// ReleaseLock 释放进程锁
func ReleaseLock(runDir string, logger *zap.SugaredLogger) {
	lockFile := filepath.Join(runDir, lockFileName)
	os.Remove(lockFile)
	logger.Infow("Process lock released", "lock_file", lockFile)
}

// isProcessRunning 检查进程是否在运行
func isProcessRunning(pidStr string) bool {
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return false
	}

	// 发送信号 0 检查进程是否存在（不实际发送信号）
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil
}
