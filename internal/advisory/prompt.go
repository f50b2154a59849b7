package advisory

import (
	"fmt"

	"github.com/0xmhha/blocketa/pkg/types"
)

// BuildPrompt renders the analyst prompt for a summary
func BuildPrompt(s types.Summary) string {
	return fmt.Sprintf(`You are a specialized blockchain network analyst for Binance Smart Chain (BSC).
Network Status:
- Current Block: %d
- Average Block Time (last %d blocks): %.2f seconds
- Target Block User is watching: %d
- Blocks remaining: %d

Provide a concise (max 2 sentences) professional insight about the network status and the countdown.
If blocks are close, be encouraging. If block time is slower than the target %.1fs, mention the slight delay.`,
		s.CurrentBlock, types.DefaultWindowSize, s.AvgBlockTime, s.TargetBlock, s.BlocksRemaining, types.DefaultBlockTime)
}
