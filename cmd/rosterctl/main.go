// rosterctl 命令行：解析排班/员工表格、生成整改计划、列出工作表
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
