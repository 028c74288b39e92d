package main

import (
	"oss.terrastruct.com/lrviz/lib/xmain"
	"oss.terrastruct.com/lrviz/lrcli"
)

func main() {
	xmain.Main(lrcli.Run)
}
