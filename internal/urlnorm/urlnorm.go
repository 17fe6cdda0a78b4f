// Package urlnorm 把用户输入的任意网址规范化为 host / 类型 / slug
package urlnorm

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidURL 输入无法解析出 host
var ErrInvalidURL = errors.New("无法解析的网址")

// Kind 网址类型
type Kind string

const (
	KindLinkedIn   Kind = "linkedin"
	KindCrunchbase Kind = "crunchbase"
	KindGeneric    Kind = "generic"
)

// Normalized 规范化结果
type Normalized struct {
	Input  string // 原始输入
	Host   string // 去掉 scheme / www. / 端口后的小写 ASCII host（国际化域名转 punycode）
	Kind   Kind
	Slug   string // 仅 linkedin / crunchbase 有值
	Target string // 交给富化服务的 https URL
}

// 各社交站点中 slug 之前的路径段
var slugPrefixes = map[Kind][]string{
	KindLinkedIn:   {"company", "showcase", "school"},
	KindCrunchbase: {"organization", "company"},
}

// Normalize 解析输入：补全 scheme，去掉 www.，识别 linkedin/crunchbase 并提取 slug
func Normalize(raw string) (*Normalized, error) {
	in := strings.TrimSpace(raw)
	if in == "" || strings.ContainsAny(in, " \t\n") {
		return nil, ErrInvalidURL
	}
	withScheme := in
	if !strings.Contains(withScheme, "://") {
		withScheme = "https://" + strings.TrimPrefix(withScheme, "//")
	}
	u, err := url.Parse(withScheme)
	if err != nil {
		return nil, ErrInvalidURL
	}
	host, err := asciiHost(u.Hostname())
	if err != nil || !validHost(host) {
		return nil, ErrInvalidURL
	}

	n := &Normalized{Input: in, Host: host, Kind: classify(host)}
	if n.Kind != KindGeneric {
		n.Slug = extractSlug(n.Kind, u.Path)
	}
	n.Target = "https://" + host + strings.TrimSuffix(u.EscapedPath(), "/")
	return n, nil
}

// IsSocial linkedin / crunchbase 链接
func (n *Normalized) IsSocial() bool {
	return n.Kind == KindLinkedIn || n.Kind == KindCrunchbase
}

// ProvisionalDomain 新建临时记录时写入 domain 列的唯一键。
// 社交链接没有公司自己的域名，用 "<kind>:<slug>" 占位，避免与 linkedin.com 本身冲突。
func (n *Normalized) ProvisionalDomain() string {
	if n.IsSocial() {
		return string(n.Kind) + ":" + n.Slug
	}
	return n.Host
}

// DisplayName 由域名（或 slug）推导展示名称："acme-robotics.io" → "Acme Robotics"
func (n *Normalized) DisplayName() string {
	if n.IsSocial() && n.Slug != "" {
		return titleize(n.Slug)
	}
	return DisplayNameFromDomain(n.Host)
}

// LegacyWebsites 旧数据 website 列的历史写法（规范化之前入库的记录）
func LegacyWebsites(domain string) []string {
	return []string{
		"https://" + domain,
		"http://" + domain,
		"https://www." + domain,
		"http://www." + domain,
		"https://" + domain + "/",
		"http://" + domain + "/",
	}
}

// DisplayNameFromDomain 取可注册域名去掉公共后缀的部分
func DisplayNameFromDomain(host string) string {
	label := host
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		label = etld1
	}
	if suffix, _ := publicsuffix.PublicSuffix(label); suffix != "" && suffix != label {
		label = strings.TrimSuffix(label, "."+suffix)
	}
	if u, err := idna.Display.ToUnicode(label); err == nil {
		label = u
	}
	return titleize(label)
}

// asciiHost 统一为小写 punycode 形式，"Bücher.de" 与 "xn--bcher-kva.de" 得到同一个 host
func asciiHost(raw string) (string, error) {
	host := strings.TrimSuffix(strings.ToLower(raw), ".")
	host, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(host, "www."), nil
}

// cases.Caser 有内部状态，不能跨 goroutine 共享，每次新建
func titleize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(s)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

func classify(host string) Kind {
	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return KindLinkedIn
	case host == "crunchbase.com" || strings.HasSuffix(host, ".crunchbase.com"):
		return KindCrunchbase
	default:
		return KindGeneric
	}
}

func extractSlug(kind Kind, path string) string {
	var segs []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			segs = append(segs, p)
		}
	}
	for i := 0; i+1 < len(segs); i++ {
		for _, prefix := range slugPrefixes[kind] {
			if strings.EqualFold(segs[i], prefix) {
				return strings.ToLower(segs[i+1])
			}
		}
	}
	return ""
}

// validHost 必须包含点、字符合法，且能推导出 eTLD+1（排除 localhost、纯公共后缀）
func validHost(host string) bool {
	if host == "" || !strings.Contains(host, ".") {
		return false
	}
	for _, r := range host {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '.') {
			return false
		}
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return false
	}
	return true
}
