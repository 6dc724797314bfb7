package tdx

import "strings"

// DefaultPort 行情服务器默认端口
const DefaultPort = "7709"

var (

	// Hosts 默认服务器地址,按上海,北京,广州,武汉排列
	Hosts = append(append(append(append([]string(nil), SHHosts...), BJHosts...), GZHosts...), WHHosts...)

	// SHHosts 上海服务器地址
	SHHosts = []string{
		"124.71.187.122",
		"122.51.120.217",
		"111.229.247.189",
		"124.70.176.52",
		"123.60.186.45",
		"122.51.232.182",
		"118.25.98.114",
		"124.70.199.56",
	}

	// BJHosts 北京服务器地址
	BJHosts = []string{
		"121.36.54.217",
		"121.36.81.195",
		"123.249.15.60",
		"124.70.75.113",
	}

	// GZHosts 广州服务器地址
	GZHosts = []string{
		"124.71.85.110",
		"139.9.51.18",
		"139.159.239.163",
		"124.71.9.153",
	}

	// WHHosts 武汉服务器地址
	WHHosts = []string{
		"119.97.185.59",
	}
)

// withPort 没有端口的地址补上默认端口
func withPort(addr string) string {
	if !strings.Contains(addr, ":") {
		addr += ":" + DefaultPort
	}
	return addr
}
