package progress

import "context"

// command 一次乐观更新：apply 先改本地状态，远端确认后 confirm，失败则 rollback。
// apply 返回 false 表示无需执行（例如重复提交），此时返回 errSkipped 且不发请求。
type command interface {
	apply() bool
	confirm() error
	rollback() error
}

// runOptimistic 执行 本地修改 -> 等待远端 -> 确认或回滚
func runOptimistic(ctx context.Context, cmd command, send func(context.Context) error) error {
	if !cmd.apply() {
		return errSkipped
	}
	if err := send(ctx); err != nil {
		if rbErr := cmd.rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}
	return cmd.confirm()
}
