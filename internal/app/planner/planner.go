package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dest 描述一次复制的目标位置（目录与文件名均已最终确定）。
type Dest struct {
	Dir  string // <out>/YYYY/YYYY-MM
	Name string // YYYY-MM-DD_<original>[_n]<ext>
}

func (d Dest) Path() string { return filepath.Join(d.Dir, d.Name) }

// Planner 为一次 run 内的全部条目分配互不冲突的目标路径。
//
// 占用判定（同一目标目录内）：
// - 磁盘上已有的文件名（上次 run 的产物也算）
// - 本次 run 已规划但可能尚未落盘的文件名
//
// 该判定只在单写者下成立：run 层保证复制是串行的。
type Planner struct {
	out  string
	used map[string]map[string]struct{} // dir -> 占用文件名集合
}

func New(out string) *Planner {
	return &Planner{
		out:  filepath.Clean(out),
		used: map[string]map[string]struct{}{},
	}
}

// Plan 依据规范日期与源文件名计算目标；冲突时在扩展名前追加 _1、_2…
// 直到找到空闲名字（计数严格递增，保证不会静默覆盖）。
//
// date 必须已是 YYYY-MM-DD：目录布局 <out>/YYYY/YYYY-MM/ 直接取其前缀。
func (p *Planner) Plan(date, srcName string) (Dest, error) {
	if len(date) != 10 {
		return Dest{}, fmt.Errorf("非法规范日期：%q", date)
	}

	dir := filepath.Join(p.out, date[:4], date[:7])
	names, err := p.namesFor(dir)
	if err != nil {
		return Dest{}, err
	}

	name := allocName(date+"_"+srcName, names)
	names[name] = struct{}{}
	return Dest{Dir: dir, Name: name}, nil
}

// namesFor 惰性读取目录现状（只做 ReadDir，不读内容）；目录不存在视为空。
func (p *Planner) namesFor(dir string) (map[string]struct{}, error) {
	if names, ok := p.used[dir]; ok {
		return names, nil
	}

	names := map[string]struct{}{}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, e := range entries {
		names[e.Name()] = struct{}{}
	}
	p.used[dir] = names
	return names, nil
}

func allocName(name string, used map[string]struct{}) string {
	if _, ok := used[name]; !ok {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		cand := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, ok := used[cand]; !ok {
			return cand
		}
	}
}
