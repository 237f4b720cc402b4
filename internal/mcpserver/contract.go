package mcpserver

// ChapterFormat describes the output of convert_timestamps so LLM
// consumers can post it as a YouTube description without reformatting.
const ChapterFormat = `# streammark Chapter Line Format

` + "```" + `text
00:00:00 配信開始
00:02:05 面白かったところ
01:10:42 質問
` + "```" + `

## Rules

1. The first line is always ` + "`" + `00:00:00` + "`" + ` followed by the start label.
2. Each following line is one recorded moment, in log order, as ` + "`" + `HH:MM:SS memo` + "`" + `.
3. Offsets are measured from the stream's actual start time reported by YouTube,
   truncated to whole seconds.
4. Moments recorded before the stream started are shown as ` + "`" + `00:00:00` + "`" + `.
5. Hours are at least two digits and widen past 99.
6. Lines are joined with a single newline.
`
